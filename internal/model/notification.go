package model

import "time"

// Notification 短暂提示消息
type Notification struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
