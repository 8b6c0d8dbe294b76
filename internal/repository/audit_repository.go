// internal/repository/audit_repository.go
package repository

import (
	"context"

	"gorm.io/gorm"
)

// AuditRepository は整合性監査の読み取り専用クエリ群です。
// 各メソッドは違反行の識別子を limit 件まで返す。件数はスライス長とは別に
// 全体数を返す (サンプルは切り詰めるが件数は正確に報告したい)。
type AuditRepository interface {
	// completed_items > total_items のプラン
	FindOvercountedPlans(ctx context.Context, db *gorm.DB, limit int) (int64, []string, error)
	// completed_items が completed 状態のアイテム実数と食い違うプラン
	FindDriftedPlanCounters(ctx context.Context, db *gorm.DB, limit int) (int64, []string, error)
	// completed なのに対応する PracticeRecord が無いアイテム
	FindCompletedItemsWithoutRecord(ctx context.Context, db *gorm.DB, limit int) (int64, []string, error)
	// PracticeRecord があるのに参照先アイテムが completed でないもの
	FindRecordsWithoutCompletedItem(ctx context.Context, db *gorm.DB, limit int) (int64, []string, error)
	// (user_id, client_op_id) が重複している PracticeRecord
	FindDuplicateClientOps(ctx context.Context, db *gorm.DB, limit int) (int64, []string, error)
}

type gormAuditRepository struct{}

func NewGormAuditRepository() AuditRepository {
	return &gormAuditRepository{}
}

func (r *gormAuditRepository) FindOvercountedPlans(ctx context.Context, db *gorm.DB, limit int) (int64, []string, error) {
	var count int64
	err := db.WithContext(ctx).
		Raw(`SELECT COUNT(*) FROM daily_plans WHERE completed_items > total_items`).
		Scan(&count).Error
	if err != nil {
		return 0, nil, err
	}

	var ids []string
	err = db.WithContext(ctx).
		Raw(`SELECT plan_id FROM daily_plans WHERE completed_items > total_items LIMIT ?`, limit).
		Scan(&ids).Error
	return count, ids, err
}

func (r *gormAuditRepository) FindDriftedPlanCounters(ctx context.Context, db *gorm.DB, limit int) (int64, []string, error) {
	const cond = `
		SELECT p.plan_id FROM daily_plans p
		WHERE p.completed_items <> (
			SELECT COUNT(*) FROM plan_items i
			WHERE i.plan_id = p.plan_id AND i.status = 'completed'
		)`

	var count int64
	if err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM (`+cond+`) AS drifted`).Scan(&count).Error; err != nil {
		return 0, nil, err
	}

	var ids []string
	err := db.WithContext(ctx).Raw(cond+` LIMIT ?`, limit).Scan(&ids).Error
	return count, ids, err
}

func (r *gormAuditRepository) FindCompletedItemsWithoutRecord(ctx context.Context, db *gorm.DB, limit int) (int64, []string, error) {
	const cond = `
		SELECT i.plan_item_id FROM plan_items i
		LEFT JOIN practice_records rec ON rec.plan_item_id = i.plan_item_id
		WHERE i.status = 'completed' AND rec.record_id IS NULL`

	var count int64
	if err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM (`+cond+`) AS orphans`).Scan(&count).Error; err != nil {
		return 0, nil, err
	}

	var ids []string
	err := db.WithContext(ctx).Raw(cond+` LIMIT ?`, limit).Scan(&ids).Error
	return count, ids, err
}

func (r *gormAuditRepository) FindRecordsWithoutCompletedItem(ctx context.Context, db *gorm.DB, limit int) (int64, []string, error) {
	const cond = `
		SELECT rec.record_id FROM practice_records rec
		JOIN plan_items i ON i.plan_item_id = rec.plan_item_id
		WHERE rec.plan_item_id IS NOT NULL AND i.status <> 'completed'`

	var count int64
	if err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM (`+cond+`) AS stale`).Scan(&count).Error; err != nil {
		return 0, nil, err
	}

	var ids []string
	err := db.WithContext(ctx).Raw(cond+` LIMIT ?`, limit).Scan(&ids).Error
	return count, ids, err
}

func (r *gormAuditRepository) FindDuplicateClientOps(ctx context.Context, db *gorm.DB, limit int) (int64, []string, error) {
	const cond = `
		SELECT user_id || ':' || client_op_id AS dup_key FROM practice_records
		WHERE client_op_id IS NOT NULL
		GROUP BY user_id, client_op_id
		HAVING COUNT(*) > 1`

	var count int64
	if err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM (`+cond+`) AS dups`).Scan(&count).Error; err != nil {
		return 0, nil, err
	}

	var ids []string
	err := db.WithContext(ctx).Raw(cond+` LIMIT ?`, limit).Scan(&ids).Error
	return count, ids, err
}
