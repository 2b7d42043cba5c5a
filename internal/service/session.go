package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrEmptyName 登录名去掉空白后为空
var ErrEmptyName = errors.New("display name is empty")

// Session 当前浏览器的身份：只有一个可选的显示名，不做任何校验
type Session struct {
	ClientID string
	Name     string
}

func (s Session) LoggedIn() bool { return s.Name != "" }

type sessionClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SessionCodec 把 Session 编进签名 cookie，相当于浏览器的 localStorage。
// 签名只防止 cookie 被篡改成别的 client id，不是鉴权：任何人都可以用任何名字登录。
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionCodec(secret string, ttl time.Duration, now func() time.Time) *SessionCodec {
	if now == nil {
		now = time.Now
	}
	return &SessionCodec{secret: []byte(secret), ttl: ttl, now: now}
}

func (c *SessionCodec) Encode(s Session) (string, error) {
	now := c.now()
	claims := sessionClaims{
		Name: s.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  s.ClientID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode 读取失败（缺失、过期、签名不符）一律视为"没有会话"，分配新的 client id
func (c *SessionCodec) Decode(token string) Session {
	if token == "" {
		return NewSession()
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil || claims.Subject == "" {
		return NewSession()
	}
	return Session{ClientID: claims.Subject, Name: claims.Name}
}

func NewSession() Session { return Session{ClientID: uuid.NewString()} }

// NormalizeName 去掉首尾空白
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

func Greeting(name, adminName string) string {
	if adminName != "" && name == adminName {
		return "Signed in as admin 🛡️"
	}
	return fmt.Sprintf("Nice to see you, %s! 🌟", name)
}

const LogoutNotice = "Logged out. See you next time! 👋"
