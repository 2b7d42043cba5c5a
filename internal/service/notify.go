package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/pixelpals/internal/model"
)

const (
	NotificationTTL = 4 * time.Second
	NotificationCap = 3
)

// NotificationQueue 新的在前；插入时超出上限的最旧项立即丢弃，其余各自在 4 秒后过期
type NotificationQueue struct {
	mu    sync.Mutex
	items []model.Notification
	now   func() time.Time
}

func NewNotificationQueue(now func() time.Time) *NotificationQueue {
	if now == nil {
		now = time.Now
	}
	return &NotificationQueue{now: now}
}

func (q *NotificationQueue) Push(text string) model.Notification {
	n := model.Notification{ID: uuid.NewString(), Text: text, CreatedAt: q.now()}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([]model.Notification{n}, q.items...)
	if len(q.items) > NotificationCap {
		q.items = q.items[:NotificationCap]
	}
	q.pruneLocked()
	return n
}

// List 返回当前可见的通知
func (q *NotificationQueue) List() []model.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pruneLocked()
	return append([]model.Notification{}, q.items...)
}

func (q *NotificationQueue) pruneLocked() {
	now := q.now()
	kept := q.items[:0]
	for _, n := range q.items {
		if now.Sub(n.CreatedAt) < NotificationTTL {
			kept = append(kept, n)
		}
	}
	q.items = kept
}
