package service

import (
	"sync"
	"time"

	"github.com/d60-Lab/pixelpals/internal/model"
)

// Client 单个浏览器的界面状态：通知、当前视图、卡片状态
type Client struct {
	ID      string
	Notices *NotificationQueue
	Cards   *CardDeck

	mu       sync.Mutex
	view     model.View
	lastSeen time.Time
}

func (c *Client) Notify(text string) { c.Notices.Push(text) }

func (c *Client) SetView(v model.View) {
	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
}

func (c *Client) View() model.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Clients 按 client id 保存界面状态；进程内、非持久
type Clients struct {
	mu  sync.Mutex
	m   map[string]*Client
	now func() time.Time
}

func NewClients(now func() time.Time) *Clients {
	if now == nil {
		now = time.Now
	}
	return &Clients{m: make(map[string]*Client), now: now}
}

// Get 不存在时创建
func (cs *Clients) Get(id string) *Client {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.m[id]
	if !ok {
		c = &Client{ID: id, Notices: NewNotificationQueue(cs.now), Cards: NewCardDeck(cs.now), view: model.ViewAll}
		cs.m[id] = c
	}
	c.mu.Lock()
	c.lastSeen = cs.now()
	c.mu.Unlock()
	return c
}

// Sweep 清理超过 idle 未访问的客户端，返回清理数量
func (cs *Clients) Sweep(idle time.Duration) int {
	cutoff := cs.now().Add(-idle)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	n := 0
	for id, c := range cs.m {
		c.mu.Lock()
		stale := c.lastSeen.Before(cutoff)
		c.mu.Unlock()
		if stale {
			delete(cs.m, id)
			n++
		}
	}
	return n
}

func (cs *Clients) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.m)
}
