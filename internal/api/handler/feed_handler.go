package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/d60-Lab/pixelpals/internal/live"
	"github.com/d60-Lab/pixelpals/pkg/response"
)

const noticeLinkCopied = "Link copied! Share it with your friends 🔗"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type statusView struct {
	Live     bool `json:"live"`
	Remote   bool `json:"remote"`
	Entries  int  `json:"entries"`
	QueueLen int  `json:"queue_len"`
	Watchers int  `json:"watchers"`
}

// Notifications 当前客户端仍在有效期内的提示，最新的在前
// @Summary 提示消息
// @Tags 客户端
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Notification}
// @Router /api/v1/notifications [get]
func (h *Handler) Notifications(c *gin.Context) {
	response.Success(c, h.client(c).Notices.List())
}

// Share 返回可分享的地址；复制到剪贴板由浏览器完成
// @Summary 分享链接
// @Tags 客户端
// @Produce json
// @Success 200 {object} response.Response{data=map[string]string}
// @Router /api/v1/share [get]
func (h *Handler) Share(c *gin.Context) {
	url := h.publicURL
	if url == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		url = scheme + "://" + c.Request.Host + "/"
	}
	h.client(c).Notify(noticeLinkCopied)
	response.Success(c, gin.H{"url": url})
}

// Status 同步状态
// @Summary 同步状态
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response{data=statusView}
// @Router /api/v1/status [get]
func (h *Handler) Status(c *gin.Context) {
	st := statusView{
		Live:    h.gallery.Live(),
		Remote:  h.gallery.Remote(),
		Entries: len(h.gallery.Entries()),
	}
	if h.writer != nil {
		st.QueueLen = h.writer.QueueLen()
	}
	if h.hub != nil {
		st.Watchers = h.hub.Len()
	}
	response.Success(c, st)
}

// Watch 升级为 websocket，画廊变化时推送 gallery.changed
// @Summary 变更推送
// @Tags 客户端
// @Router /api/v1/ws [get]
func (h *Handler) Watch(c *gin.Context) {
	if h.hub == nil {
		response.NotFound(c, "live feed disabled")
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已经写了错误响应
		return
	}
	h.hub.Serve(conn, live.Event{Type: live.EventHello, Live: h.gallery.Live()})
}
