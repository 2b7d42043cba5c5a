package model

import "slices"

// ArtEntry 画廊中的一幅作品
// ID 为本地生成的 id；ExternalID 仅当作品存在于外部实时存储时才有值
type ArtEntry struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id,omitempty"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Creator    string    `json:"creator"`
	Likes      int       `json:"likes"`
	LikedBy    []string  `json:"liked_by"`
	Comments   []Comment `json:"comments"` // 新的在前
	Timestamp  int64     `json:"timestamp"` // epoch ms，仅用于排序
}

// Comment 评论，创建后不可修改
type Comment struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	Timestamp int64  `json:"timestamp"`
}

// HasLiked 判断 user 是否已点赞
func (e *ArtEntry) HasLiked(user string) bool {
	return user != "" && slices.Contains(e.LikedBy, user)
}

// Clone 深拷贝，避免调用方修改共享切片
func (e ArtEntry) Clone() ArtEntry {
	e.LikedBy = append([]string{}, e.LikedBy...)
	e.Comments = append([]Comment{}, e.Comments...)
	return e
}

// CloneAll 拷贝整个列表
func CloneAll(entries []ArtEntry) []ArtEntry {
	out := make([]ArtEntry, len(entries))
	for i := range entries {
		out[i] = entries[i].Clone()
	}
	return out
}
