// Package live pushes gallery change events to connected browsers over
// websockets so they can refetch their current view.
package live

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/d60-Lab/pixelpals/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// 事件类型
const (
	EventGalleryChanged = "gallery.changed"
	EventHello          = "hello"
)

// Event 推送给浏览器的消息
type Event struct {
	Type      string    `json:"type"`
	Live      bool      `json:"live"`
	Timestamp time.Time `json:"timestamp"`
}

// Client 一个 websocket 连接
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub 维护连接并广播事件
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run 处理注册、注销与广播，直到 ctx 结束
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			close(h.done)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			msg := mustMarshal(ev)
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// 慢连接直接断开
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish 非阻塞；队列满时丢弃（浏览器下次事件仍会拉到最新列表）
func (h *Hub) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- ev:
	default:
		logger.Warn("live hub queue full, drop event", zap.String("type", ev.Type))
	}
}

// Len 当前连接数
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve 接管已升级的连接，阻塞到连接关闭
func (h *Hub) Serve(conn *websocket.Conn, hello Event) {
	c := &Client{hub: h, conn: conn, send: make(chan []byte, 16)}
	c.send <- mustMarshal(hello)
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	c.readPump()
}

// readPump 只用来处理 pong 与关闭；浏览器不通过 websocket 发送指令
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket closed", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("marshal live event", zap.Error(err))
		return []byte("{}")
	}
	return b
}
