package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/pixelpals/internal/model"
)

// DocumentRepository SQL 版实时存储的字段级读写
type DocumentRepository interface {
	// SetFields 在一个事务内 upsert 字段并递增 path 的 revision
	SetFields(ctx context.Context, path, key string, fields map[string]string) error
	// DeleteDocument 删除记录全部字段并递增 revision
	DeleteDocument(ctx context.Context, path, key string) error
	ListFields(ctx context.Context, path string) ([]*model.DocumentField, error)
	Revision(ctx context.Context, path string) (int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository { return &documentRepository{db: db} }

// InitSchema 建表
func InitSchema(db *gorm.DB) error {
	return db.AutoMigrate(&model.DocumentField{}, &model.Revision{})
}

func (r *documentRepository) SetFields(ctx context.Context, path, key string, fields map[string]string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			rows := make([]model.DocumentField, 0, len(fields))
			for f, v := range fields {
				rows = append(rows, model.DocumentField{Path: path, DocKey: key, Field: f, Value: v, UpdatedAt: now})
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "path"}, {Name: "doc_key"}, {Name: "field"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&rows).Error; err != nil {
				return err
			}
		}
		return bumpRevision(tx, path, now)
	})
}

func (r *documentRepository) DeleteDocument(ctx context.Context, path, key string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("path = ? AND doc_key = ?", path, key).Delete(&model.DocumentField{}).Error; err != nil {
			return err
		}
		return bumpRevision(tx, path, now)
	})
}

func (r *documentRepository) ListFields(ctx context.Context, path string) ([]*model.DocumentField, error) {
	var res []*model.DocumentField
	err := r.db.WithContext(ctx).Where("path = ?", path).Order("doc_key, field").Find(&res).Error
	return res, err
}

func (r *documentRepository) Revision(ctx context.Context, path string) (int64, error) {
	var rev model.Revision
	err := r.db.WithContext(ctx).Where("path = ?", path).Limit(1).Find(&rev).Error
	return rev.Rev, err
}

func bumpRevision(tx *gorm.DB, path string, now time.Time) error {
	// 幂等建行，再原子自增
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Revision{Path: path, UpdatedAt: now}).Error; err != nil {
		return err
	}
	return tx.Model(&model.Revision{}).
		Where("path = ?", path).
		Updates(map[string]any{"rev": gorm.Expr("rev + ?", 1), "updated_at": now}).Error
}
