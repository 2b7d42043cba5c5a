// Package docs PixelPals API 文档
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/session": {
            "get": {"tags": ["会话"], "summary": "当前会话", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}},
            "post": {
                "tags": ["会话"], "summary": "登录", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "显示名", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}}
            },
            "delete": {"tags": ["会话"], "summary": "退出登录", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/api/v1/images": {
            "get": {
                "tags": ["作品"], "summary": "作品列表", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "all | hallOfFame | myWorks", "name": "view", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            },
            "post": {
                "tags": ["作品"], "summary": "上传作品", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "作品信息", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.uploadRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/images/{id}": {
            "delete": {
                "tags": ["作品"], "summary": "删除作品", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "作品ID", "name": "id", "in": "path", "required": true}, {"type": "boolean", "description": "确认删除", "name": "confirm", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/images/{id}/like": {
            "post": {
                "tags": ["作品"], "summary": "点赞", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "作品ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/images/{id}/comments": {
            "post": {
                "tags": ["作品"], "summary": "发表评论", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "作品ID", "name": "id", "in": "path", "required": true}, {"description": "评论内容", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.commentRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/notifications": {
            "get": {"tags": ["客户端"], "summary": "提示消息", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/api/v1/share": {
            "get": {"tags": ["客户端"], "summary": "分享链接", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/api/v1/status": {
            "get": {"tags": ["系统"], "summary": "同步状态", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/api/v1/ws": {
            "get": {"tags": ["客户端"], "summary": "变更推送", "responses": {}}
        },
        "/healthz": {
            "get": {"tags": ["系统"], "summary": "存活检查", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        }
    },
    "definitions": {
        "handler.commentRequest": {"type": "object", "properties": {"text": {"type": "string"}}},
        "handler.loginRequest": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}},
        "handler.uploadRequest": {"type": "object", "required": ["title", "url"], "properties": {"title": {"type": "string"}, "url": {"type": "string"}}},
        "response.Response": {"type": "object", "properties": {"code": {"type": "integer"}, "data": {}, "message": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "PixelPals API",
	Description:      "像素画社区画廊：作品、点赞、评论与实时同步",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
