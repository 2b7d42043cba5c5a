package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/pixelpals/internal/api/middleware"
	"github.com/d60-Lab/pixelpals/internal/live"
	"github.com/d60-Lab/pixelpals/internal/service"
	"github.com/d60-Lab/pixelpals/pkg/response"
)

// Handler HTTP 入口，业务都在 service 层
type Handler struct {
	gallery   *service.Gallery
	writer    *service.RemoteWriter
	sessions  *middleware.Sessions
	hub       *live.Hub
	adminName string
	publicURL string
}

type Options struct {
	AdminName string
	PublicURL string
}

func NewHandler(gallery *service.Gallery, writer *service.RemoteWriter, sessions *middleware.Sessions, hub *live.Hub, opts Options) *Handler {
	return &Handler{
		gallery:   gallery,
		writer:    writer,
		sessions:  sessions,
		hub:       hub,
		adminName: opts.AdminName,
		publicURL: opts.PublicURL,
	}
}

// client 当前请求的客户端状态，总是非 nil
func (h *Handler) client(c *gin.Context) *service.Client {
	if cl := middleware.GetClient(c); cl != nil {
		return cl
	}
	return &service.Client{ID: currentSession(c).ClientID, Notices: service.NewNotificationQueue(nil), Cards: service.NewCardDeck(nil)}
}

func (h *Handler) user(c *gin.Context) string {
	return currentSession(c).Name
}

// Healthz 存活检查
// @Summary 存活检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

func currentSession(c *gin.Context) service.Session {
	return middleware.GetSession(c)
}
