// internal/repository/record_repository.go
package repository

import (
	"context"

	"go_shadowing_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecordRepository interface {
	Create(ctx context.Context, tx *gorm.DB, record *model.PracticeRecord) error
	// Delete は補償パス専用の物理削除。PracticeRecord は本来不変で、
	// 同一トランザクションの失敗時にだけ消してよい。
	Delete(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) error
}

type gormRecordRepository struct{}

func NewGormRecordRepository() RecordRepository {
	return &gormRecordRepository{}
}

func (r *gormRecordRepository) Create(ctx context.Context, tx *gorm.DB, record *model.PracticeRecord) error {
	result := tx.WithContext(ctx).Create(record)
	return result.Error
}

func (r *gormRecordRepository) Delete(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) error {
	result := tx.WithContext(ctx).
		Where("record_id = ?", recordID).
		Delete(&model.PracticeRecord{})
	return result.Error
}
