package model

import "time"

// DocumentField SQL 实时存储中的一个字段（path/key/field 唯一）
type DocumentField struct {
	Path      string    `gorm:"primaryKey;type:varchar(64)"`
	DocKey    string    `gorm:"primaryKey;type:varchar(64);index:idx_doc_path_key"`
	Field     string    `gorm:"primaryKey;type:varchar(64)"`
	Value     string    `gorm:"type:text;not null"` // JSON 编码
	UpdatedAt time.Time
}

func (DocumentField) TableName() string { return "realtime_fields" }

// Revision 每次写入 path 时自增，订阅方据此判断是否需要重新拉取快照
type Revision struct {
	Path      string `gorm:"primaryKey;type:varchar(64)"`
	Rev       int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (Revision) TableName() string { return "realtime_revisions" }
