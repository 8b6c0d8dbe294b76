// internal/repository/user_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"go_shadowing_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.User, error)
	// UpdateLevelCAS はレベル昇格のCAS更新。読み取り時のレベルが変わっていなければ適用する。
	// 同時完了による二重昇格を防ぐ。戻り値は適用された行数。
	UpdateLevelCAS(ctx context.Context, db *gorm.DB, userID uuid.UUID, oldLevel, newLevel int) (int64, error)
	// UpdateStreakCAS はストリーク関連4カラムのCAS更新。
	// WHERE句には読み取り済みの旧値をそのまま並べる。戻り値は適用された行数。
	UpdateStreakCAS(ctx context.Context, db *gorm.DB, prev *model.User, streakDays, maxStreakDays, totalDays int, lastPracticeDate time.Time) (int64, error)
}

type gormUserRepository struct{}

func NewGormUserRepository() UserRepository {
	return &gormUserRepository{}
}

func (r *gormUserRepository) FindByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.User, error) {
	var user model.User
	result := db.WithContext(ctx).Where("user_id = ?", userID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (r *gormUserRepository) UpdateLevelCAS(ctx context.Context, db *gorm.DB, userID uuid.UUID, oldLevel, newLevel int) (int64, error) {
	result := db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ? AND level = ?", userID, oldLevel).
		Update("level", newLevel)
	return result.RowsAffected, result.Error
}

func (r *gormUserRepository) UpdateStreakCAS(ctx context.Context, db *gorm.DB, prev *model.User, streakDays, maxStreakDays, totalDays int, lastPracticeDate time.Time) (int64, error) {
	query := db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ? AND streak_days = ? AND max_streak_days = ? AND total_practice_days = ?",
			prev.UserID, prev.StreakDays, prev.MaxStreakDays, prev.TotalPracticeDays)

	// last_practice_date は NULL 許容のため、NULL と値で述語を分岐する
	if prev.LastPracticeDate == nil {
		query = query.Where("last_practice_date IS NULL")
	} else {
		query = query.Where("last_practice_date = ?", *prev.LastPracticeDate)
	}

	result := query.Updates(map[string]interface{}{
		"streak_days":         streakDays,
		"max_streak_days":     maxStreakDays,
		"total_practice_days": totalDays,
		"last_practice_date":  lastPracticeDate,
	})
	return result.RowsAffected, result.Error
}
