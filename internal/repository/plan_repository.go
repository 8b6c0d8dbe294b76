// internal/repository/plan_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"go_shadowing_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlanCompletionStat はレベル判定・リタイア保護用の1プラン分の完了度
type PlanCompletionStat struct {
	PlanDate       time.Time
	TotalItems     int
	CompletedItems int
}

type PlanRepository interface {
	FindByUserAndDate(ctx context.Context, db *gorm.DB, userID uuid.UUID, planDate time.Time) (*model.DailyPlan, error)
	FindByUserAndDateWithItems(ctx context.Context, db *gorm.DB, userID uuid.UUID, planDate time.Time) (*model.DailyPlan, error)
	FindByID(ctx context.Context, db *gorm.DB, planID uuid.UUID) (*model.DailyPlan, error)

	// CreateWithItems はプラン行とアイテム行を1バッチで作成します。
	// (user_id, plan_date) のユニーク制約違反は gorm.ErrDuplicatedKey 相当として呼び出し元が解決する。
	CreateWithItems(ctx context.Context, tx *gorm.DB, plan *model.DailyPlan, items []*model.PlanItem) error

	CountNonPendingItems(ctx context.Context, db *gorm.DB, planID uuid.UUID) (int64, error)
	// DeletePlanAndItems は未着手プランの削除。プラン行は completed_items = 0 をガードに削除する。
	DeletePlanAndItems(ctx context.Context, tx *gorm.DB, planID uuid.UUID) error

	FindItemByID(ctx context.Context, db *gorm.DB, planItemID uuid.UUID) (*model.PlanItem, error)

	// UpdateItemStatusCAS は読み取り済みステータスを述語にしたアイテムの状態遷移。
	// 完了のクレーム (→ completed) と補償の巻き戻し (completed →) の両方がこれを使う。
	UpdateItemStatusCAS(ctx context.Context, db *gorm.DB, planItemID uuid.UUID, from, to model.PlanItemStatus) (int64, error)

	// IncrementCompleted は completed_items を +1 します。
	// completed_items < total_items を述語に持つため total_items を超えない (飽和)。
	IncrementCompleted(ctx context.Context, db *gorm.DB, planID uuid.UUID) (int64, error)
	// DecrementCompleted は補償パス専用。0 を下回らない。
	DecrementCompleted(ctx context.Context, db *gorm.DB, planID uuid.UUID) (int64, error)

	// CompletionStats は plan_date が [from, to) の範囲のプランの完了度を返します。
	// to は排他境界 (当日を含めない判定はここで決まる)。
	CompletionStats(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time) ([]PlanCompletionStat, error)
}

type gormPlanRepository struct{}

func NewGormPlanRepository() PlanRepository {
	return &gormPlanRepository{}
}

func (r *gormPlanRepository) FindByUserAndDate(ctx context.Context, db *gorm.DB, userID uuid.UUID, planDate time.Time) (*model.DailyPlan, error) {
	var plan model.DailyPlan
	result := db.WithContext(ctx).
		Where("user_id = ? AND plan_date = ?", userID, planDate).
		First(&plan)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &plan, nil
}

func (r *gormPlanRepository) FindByUserAndDateWithItems(ctx context.Context, db *gorm.DB, userID uuid.UUID, planDate time.Time) (*model.DailyPlan, error) {
	var plan model.DailyPlan
	result := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("plan_items.item_order ASC")
		}).
		Preload("Items.Material").
		Where("user_id = ? AND plan_date = ?", userID, planDate).
		First(&plan)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &plan, nil
}

func (r *gormPlanRepository) FindByID(ctx context.Context, db *gorm.DB, planID uuid.UUID) (*model.DailyPlan, error) {
	var plan model.DailyPlan
	result := db.WithContext(ctx).Where("plan_id = ?", planID).First(&plan)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &plan, nil
}

func (r *gormPlanRepository) CreateWithItems(ctx context.Context, tx *gorm.DB, plan *model.DailyPlan, items []*model.PlanItem) error {
	if err := tx.WithContext(ctx).Create(plan).Error; err != nil {
		return err
	}
	if len(items) > 0 {
		if err := tx.WithContext(ctx).Create(items).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *gormPlanRepository) CountNonPendingItems(ctx context.Context, db *gorm.DB, planID uuid.UUID) (int64, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.PlanItem{}).
		Where("plan_id = ? AND status <> ?", planID, model.PlanItemStatusPending).
		Count(&count)
	return count, result.Error
}

func (r *gormPlanRepository) DeletePlanAndItems(ctx context.Context, tx *gorm.DB, planID uuid.UUID) error {
	if err := tx.WithContext(ctx).
		Where("plan_id = ?", planID).
		Delete(&model.PlanItem{}).Error; err != nil {
		return err
	}
	// completed_items = 0 のガード。着手済みプランをここで消すことは決してない。
	result := tx.WithContext(ctx).
		Where("plan_id = ? AND completed_items = 0", planID).
		Delete(&model.DailyPlan{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrConflict
	}
	return nil
}

func (r *gormPlanRepository) FindItemByID(ctx context.Context, db *gorm.DB, planItemID uuid.UUID) (*model.PlanItem, error) {
	var item model.PlanItem
	result := db.WithContext(ctx).Where("plan_item_id = ?", planItemID).First(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &item, nil
}

func (r *gormPlanRepository) UpdateItemStatusCAS(ctx context.Context, db *gorm.DB, planItemID uuid.UUID, from, to model.PlanItemStatus) (int64, error) {
	result := db.WithContext(ctx).Model(&model.PlanItem{}).
		Where("plan_item_id = ? AND status = ?", planItemID, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func (r *gormPlanRepository) IncrementCompleted(ctx context.Context, db *gorm.DB, planID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Model(&model.DailyPlan{}).
		Where("plan_id = ? AND completed_items < total_items", planID).
		Update("completed_items", gorm.Expr("completed_items + 1"))
	return result.RowsAffected, result.Error
}

func (r *gormPlanRepository) DecrementCompleted(ctx context.Context, db *gorm.DB, planID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Model(&model.DailyPlan{}).
		Where("plan_id = ? AND completed_items > 0", planID).
		Update("completed_items", gorm.Expr("completed_items - 1"))
	return result.RowsAffected, result.Error
}

func (r *gormPlanRepository) CompletionStats(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time) ([]PlanCompletionStat, error) {
	var stats []PlanCompletionStat
	result := db.WithContext(ctx).Model(&model.DailyPlan{}).
		Select("plan_date, total_items, completed_items").
		Where("user_id = ? AND plan_date >= ? AND plan_date < ?", userID, from, to).
		Order("plan_date ASC").
		Find(&stats)
	if result.Error != nil {
		return nil, result.Error
	}
	return stats, nil
}
