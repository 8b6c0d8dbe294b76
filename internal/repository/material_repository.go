// internal/repository/material_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"go_shadowing_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaterialRepository interface {
	Create(ctx context.Context, tx *gorm.DB, material *model.Material) error
	FindByID(ctx context.Context, db *gorm.DB, userID, materialID uuid.UUID) (*model.Material, error)
	List(ctx context.Context, db *gorm.DB, userID uuid.UUID, query model.ListMaterialsQuery) ([]*model.Material, error)
	Delete(ctx context.Context, tx *gorm.DB, userID, materialID uuid.UUID) error
	CheckSentenceExists(ctx context.Context, db *gorm.DB, userID uuid.UUID, sentence string) (bool, error)
	UpdatePreprocess(ctx context.Context, tx *gorm.DB, userID, materialID uuid.UUID, req *model.PreprocessResultRequest) error

	// FindDueReviews は復習期限の来た教材を期限の早い順に返します。
	// 前処理が完了したものだけが対象。同着の順序はクエリの返却順(主キー順)のまま。
	FindDueReviews(ctx context.Context, db *gorm.DB, userID uuid.UUID, planDate time.Time, limit int) ([]*model.Material, error)

	// FindNewCandidates は未学習の新規教材候補を作成の古い順に返します。
	// ユーザーの現レベル以下のみ (level+1 は出さない)。
	FindNewCandidates(ctx context.Context, db *gorm.DB, userID uuid.UUID, maxLevel int, limit int) ([]*model.Material, error)

	CountMasteredAtLevel(ctx context.Context, db *gorm.DB, userID uuid.UUID, level int) (int64, error)

	// UpdateSRSCAS は間隔反復の結果をCASで書き込みます。
	// 述語は読み取り時の (review_count, status, last_practice_date) の3つすべて。
	// 戻り値は適用された行数 (0 なら読み取り後に他の書き込みが挟まった)。
	UpdateSRSCAS(ctx context.Context, db *gorm.DB, prev *model.Material, reviewCount int, nextReviewDate time.Time, status model.MaterialStatus, lastPracticeDate time.Time) (int64, error)
}

type gormMaterialRepository struct{}

func NewGormMaterialRepository() MaterialRepository {
	return &gormMaterialRepository{}
}

func (r *gormMaterialRepository) Create(ctx context.Context, tx *gorm.DB, material *model.Material) error {
	result := tx.WithContext(ctx).Create(material)
	return result.Error
}

func (r *gormMaterialRepository) FindByID(ctx context.Context, db *gorm.DB, userID, materialID uuid.UUID) (*model.Material, error) {
	var material model.Material
	result := db.WithContext(ctx).
		Where("user_id = ? AND material_id = ?", userID, materialID).
		First(&material)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &material, nil
}

func (r *gormMaterialRepository) List(ctx context.Context, db *gorm.DB, userID uuid.UUID, query model.ListMaterialsQuery) ([]*model.Material, error) {
	var materials []*model.Material
	q := db.WithContext(ctx).Where("user_id = ?", userID)
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if query.Level != nil {
		q = q.Where("level = ?", *query.Level)
	}
	result := q.Order("created_at ASC").Find(&materials)
	if result.Error != nil {
		return nil, result.Error
	}
	return materials, nil
}

func (r *gormMaterialRepository) Delete(ctx context.Context, tx *gorm.DB, userID, materialID uuid.UUID) error {
	// 論理削除 (gorm.DeletedAt)。スケジューリングの各クエリは削除済みを自動で除外する。
	result := tx.WithContext(ctx).
		Where("user_id = ? AND material_id = ?", userID, materialID).
		Delete(&model.Material{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormMaterialRepository) CheckSentenceExists(ctx context.Context, db *gorm.DB, userID uuid.UUID, sentence string) (bool, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.Material{}).
		Where("user_id = ? AND sentence = ?", userID, sentence).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (r *gormMaterialRepository) UpdatePreprocess(ctx context.Context, tx *gorm.DB, userID, materialID uuid.UUID, req *model.PreprocessResultRequest) error {
	result := tx.WithContext(ctx).Model(&model.Material{}).
		Where("user_id = ? AND material_id = ?", userID, materialID).
		Updates(map[string]interface{}{
			"preprocess_status": req.Status,
			"translation":       req.Translation,
			"phonetic_notes":    req.PhoneticNotes,
			"pause_marks":       req.PauseMarks,
			"word_mask":         req.WordMask,
			"audio_slow_path":   req.AudioSlowPath,
			"audio_normal_path": req.AudioNormalPath,
			"audio_fast_path":   req.AudioFastPath,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormMaterialRepository) FindDueReviews(ctx context.Context, db *gorm.DB, userID uuid.UUID, planDate time.Time, limit int) ([]*model.Material, error) {
	var materials []*model.Material
	result := db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND preprocess_status = ? AND next_review_date IS NOT NULL AND next_review_date <= ?",
			userID, model.MaterialStatusLearning, model.PreprocessStatusDone, planDate).
		Order("next_review_date ASC").
		Limit(limit).
		Find(&materials)
	if result.Error != nil {
		return nil, result.Error
	}
	return materials, nil
}

func (r *gormMaterialRepository) FindNewCandidates(ctx context.Context, db *gorm.DB, userID uuid.UUID, maxLevel int, limit int) ([]*model.Material, error) {
	var materials []*model.Material
	result := db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND preprocess_status = ? AND level <= ?",
			userID, model.MaterialStatusUnlearned, model.PreprocessStatusDone, maxLevel).
		Order("created_at ASC").
		Limit(limit).
		Find(&materials)
	if result.Error != nil {
		return nil, result.Error
	}
	return materials, nil
}

func (r *gormMaterialRepository) CountMasteredAtLevel(ctx context.Context, db *gorm.DB, userID uuid.UUID, level int) (int64, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.Material{}).
		Where("user_id = ? AND level = ? AND status = ?", userID, level, model.MaterialStatusMastered).
		Count(&count)
	return count, result.Error
}

func (r *gormMaterialRepository) UpdateSRSCAS(ctx context.Context, db *gorm.DB, prev *model.Material, reviewCount int, nextReviewDate time.Time, status model.MaterialStatus, lastPracticeDate time.Time) (int64, error) {
	query := db.WithContext(ctx).Model(&model.Material{}).
		Where("material_id = ? AND review_count = ? AND status = ?",
			prev.MaterialID, prev.ReviewCount, prev.Status)

	if prev.LastPracticeDate == nil {
		query = query.Where("last_practice_date IS NULL")
	} else {
		query = query.Where("last_practice_date = ?", *prev.LastPracticeDate)
	}

	result := query.Updates(map[string]interface{}{
		"review_count":       reviewCount,
		"next_review_date":   nextReviewDate,
		"status":             status,
		"last_practice_date": lastPracticeDate,
	})
	return result.RowsAffected, result.Error
}
