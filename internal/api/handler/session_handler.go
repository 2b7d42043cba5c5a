package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/pixelpals/internal/model"
	"github.com/d60-Lab/pixelpals/internal/service"
	"github.com/d60-Lab/pixelpals/pkg/response"
)

type loginRequest struct {
	Name string `json:"name" binding:"required,notblank"`
}

type sessionView struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name,omitempty"`
	LoggedIn bool   `json:"logged_in"`
	Admin    bool   `json:"admin"`
}

func (h *Handler) sessionView(s service.Session) sessionView {
	return sessionView{
		ClientID: s.ClientID,
		Name:     s.Name,
		LoggedIn: s.LoggedIn(),
		Admin:    s.LoggedIn() && h.adminName != "" && s.Name == h.adminName,
	}
}

// GetSession 当前会话
// @Summary 当前会话
// @Tags 会话
// @Produce json
// @Success 200 {object} response.Response{data=sessionView}
// @Router /api/v1/session [get]
func (h *Handler) GetSession(c *gin.Context) {
	response.Success(c, h.sessionView(currentSession(c)))
}

// Login 以显示名登录（无校验，任何人可用任何名字）
// @Summary 登录
// @Tags 会话
// @Accept json
// @Produce json
// @Param request body loginRequest true "显示名"
// @Success 200 {object} response.Response{data=sessionView}
// @Failure 400 {object} response.Response
// @Router /api/v1/session [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	name, err := service.NormalizeName(req.Name)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	s := currentSession(c)
	s.Name = name
	if err := h.sessions.Save(c, s); err != nil {
		response.InternalError(c, err)
		return
	}
	h.client(c).Notify(service.Greeting(name, h.adminName))
	response.Success(c, h.sessionView(s))
}

// Logout 清除显示名并回到全部作品
// @Summary 退出登录
// @Tags 会话
// @Produce json
// @Success 200 {object} response.Response{data=sessionView}
// @Router /api/v1/session [delete]
func (h *Handler) Logout(c *gin.Context) {
	s := currentSession(c)
	s.Name = ""
	if err := h.sessions.Save(c, s); err != nil {
		response.InternalError(c, err)
		return
	}
	cl := h.client(c)
	cl.SetView(model.ViewAll)
	cl.Notify(service.LogoutNotice)
	response.Success(c, h.sessionView(s))
}
