package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/pixelpals/internal/model"
	"github.com/d60-Lab/pixelpals/internal/service"
	"github.com/d60-Lab/pixelpals/pkg/response"
)

const (
	msgLoginRequired = "please log in first"
	msgNotFound      = "art entry not found"
	msgNotOwner      = "only the creator can delete this work"
	msgConfirmDelete = "Really delete this work?"
	msgEmptyComment  = "comment is empty"
)

type uploadRequest struct {
	Title string `json:"title" binding:"required,notblank"`
	URL   string `json:"url" binding:"required,notblank"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type galleryPage struct {
	View  model.View     `json:"view"`
	Title string         `json:"title"`
	Live  bool           `json:"live"`
	Items []service.Card `json:"items"`
}

type actionResult struct {
	Outcome string         `json:"outcome"`
	Card    *service.Card  `json:"card,omitempty"`
	Comment *model.Comment `json:"comment,omitempty"`
}

// ListImages 当前视图下的作品卡片；带 view 参数时同时切换客户端的当前视图
// @Summary 作品列表
// @Tags 作品
// @Produce json
// @Param view query string false "all | hallOfFame | myWorks"
// @Success 200 {object} response.Response{data=galleryPage}
// @Router /api/v1/images [get]
func (h *Handler) ListImages(c *gin.Context) {
	cl := h.client(c)
	if v, ok := c.GetQuery("view"); ok {
		cl.SetView(model.ParseView(v))
	}
	view := cl.View()
	user := h.user(c)
	items := service.Derive(h.gallery.Entries(), view, user)
	response.Success(c, galleryPage{
		View:  view,
		Title: service.Title(view, user),
		Live:  h.gallery.Live(),
		Items: cl.Cards.RenderAll(items, user),
	})
}

// Upload 上传作品，作者为当前显示名
// @Summary 上传作品
// @Tags 作品
// @Accept json
// @Produce json
// @Param request body uploadRequest true "作品信息"
// @Success 201 {object} response.Response{data=service.Card}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/images [post]
func (h *Handler) Upload(c *gin.Context) {
	user := h.user(c)
	if user == "" {
		response.Unauthorized(c, msgLoginRequired)
		return
	}
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cl := h.client(c)
	e := h.gallery.Upload(c.Request.Context(), req.Title, user, req.URL, cl)
	response.Created(c, cl.Cards.Render(e, user))
}

// Like 点赞
// @Summary 点赞
// @Tags 作品
// @Produce json
// @Param id path string true "作品ID"
// @Success 200 {object} response.Response{data=actionResult}
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/images/{id}/like [post]
func (h *Handler) Like(c *gin.Context) {
	id := c.Param("id")
	user := h.user(c)
	cl := h.client(c)
	outcome, err := cl.Cards.Like(c.Request.Context(), h.gallery, id, user, cl)
	if h.fail(c, outcome, err) {
		return
	}
	response.Success(c, h.result(cl, id, user, outcome))
}

// Comment 发表评论
// @Summary 发表评论
// @Tags 作品
// @Accept json
// @Produce json
// @Param id path string true "作品ID"
// @Param request body commentRequest true "评论内容"
// @Success 201 {object} response.Response{data=actionResult}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/images/{id}/comments [post]
func (h *Handler) Comment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	id := c.Param("id")
	user := h.user(c)
	cl := h.client(c)
	outcome, comment, err := cl.Cards.Comment(c.Request.Context(), h.gallery, id, req.Text, user)
	if h.fail(c, outcome, err) {
		return
	}
	res := h.result(cl, id, user, outcome)
	res.Comment = comment
	response.Created(c, res)
}

// Delete 删除作品，仅作者可用，需要 confirm=true
// @Summary 删除作品
// @Tags 作品
// @Produce json
// @Param id path string true "作品ID"
// @Param confirm query bool false "确认删除"
// @Success 200 {object} response.Response{data=actionResult}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/images/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	confirmed, _ := strconv.ParseBool(c.DefaultQuery("confirm", "false"))
	id := c.Param("id")
	cl := h.client(c)
	outcome, err := cl.Cards.Delete(c.Request.Context(), h.gallery, id, h.user(c), confirmed, cl)
	if h.fail(c, outcome, err) {
		return
	}
	response.Success(c, actionResult{Outcome: outcome.String()})
}

// fail 把交互结果映射成错误响应，已写响应时返回 true
func (h *Handler) fail(c *gin.Context, outcome service.Outcome, err error) bool {
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, msgNotFound)
		} else {
			c.Error(err)
			response.InternalError(c, err)
		}
		return true
	}
	switch outcome {
	case service.OutcomeLoginRequired:
		response.Unauthorized(c, msgLoginRequired)
	case service.OutcomeNotOwner:
		response.Forbidden(c, msgNotOwner)
	case service.OutcomeConfirmRequired:
		response.Conflict(c, msgConfirmDelete, gin.H{"prompt": "confirm", "outcome": outcome.String()})
	case service.OutcomeEmptyComment:
		response.BadRequest(c, msgEmptyComment)
	default:
		return false
	}
	return true
}

func (h *Handler) result(cl *service.Client, id, user string, outcome service.Outcome) actionResult {
	res := actionResult{Outcome: outcome.String()}
	if e, ok := h.gallery.Find(id); ok {
		card := cl.Cards.Render(e, user)
		res.Card = &card
	}
	return res
}
