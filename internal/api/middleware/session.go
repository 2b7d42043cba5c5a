package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/pixelpals/internal/service"
)

const (
	ctxSessionKey = "pixelpals.session"
	ctxClientKey  = "pixelpals.client"
)

// Sessions 把签名 cookie 解析成 Session，并挂上对应客户端的界面状态
type Sessions struct {
	codec   *service.SessionCodec
	clients *service.Clients
	cookie  string
	ttl     time.Duration
	secure  bool
}

func NewSessions(codec *service.SessionCodec, clients *service.Clients, cookie string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{codec: codec, clients: clients, cookie: cookie, ttl: ttl, secure: secure}
}

// Middleware 每个请求都会得到一个会话；没有有效 cookie 时分配新 client id。
// cookie 每次都重新签发，有效期随访问顺延。
func (s *Sessions) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(s.cookie)
		sess := s.codec.Decode(token)
		c.Set(ctxSessionKey, sess)
		c.Set(ctxClientKey, s.clients.Get(sess.ClientID))
		if err := s.Save(c, sess); err != nil {
			c.Error(err)
		}
		c.Next()
	}
}

// Save 写回 cookie 并更新当前请求上下文
func (s *Sessions) Save(c *gin.Context, sess service.Session) error {
	token, err := s.codec.Encode(sess)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookie, token, int(s.ttl/time.Second), "/", "", s.secure, true)
	c.Set(ctxSessionKey, sess)
	return nil
}

// GetSession 由 Middleware 注入；未经过中间件时返回空会话
func GetSession(c *gin.Context) service.Session {
	if v, ok := c.Get(ctxSessionKey); ok {
		if s, ok := v.(service.Session); ok {
			return s
		}
	}
	return service.Session{}
}

func GetClient(c *gin.Context) *service.Client {
	if v, ok := c.Get(ctxClientKey); ok {
		if cl, ok := v.(*service.Client); ok {
			return cl
		}
	}
	return nil
}
