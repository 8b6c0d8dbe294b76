// internal/service/progression_service.go
package service

import (
	"context"
	"time"

	"go_shadowing_keep/internal/config"
	"go_shadowing_keep/internal/middleware"
	"go_shadowing_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressionService はレベル昇格とリタイア保護(新規教材の絞り込み)の判定を行います。
// どちらも過去のデイリープラン完了率に対する読み取り専用の分析で、
// 昇格の書き込みだけがCASで行われる。
type ProgressionService interface {
	// CheckLevelProgression は昇格条件を満たしていればレベルをCASで +1 します。
	// 戻り値は実際に昇格したかどうか。
	CheckLevelProgression(ctx context.Context, userID uuid.UUID, currentLevel int, today time.Time) (bool, error)

	// CheckRetirementProtection は直近のスランプを検出し、
	// true なら次のプラン生成で新規教材スロットをすべて抑止する。
	CheckRetirementProtection(ctx context.Context, userID uuid.UUID, today time.Time) (bool, error)
}

type progressionService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	matRepo  repository.MaterialRepository
	planRepo repository.PlanRepository
}

func NewProgressionService(db *gorm.DB, userRepo repository.UserRepository, matRepo repository.MaterialRepository, planRepo repository.PlanRepository) ProgressionService {
	return &progressionService{
		db:       db,
		userRepo: userRepo,
		matRepo:  matRepo,
		planRepo: planRepo,
	}
}

func (s *progressionService) CheckLevelProgression(ctx context.Context, userID uuid.UUID, currentLevel int, today time.Time) (bool, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID, "level", currentLevel)

	// 最高レベルからは昇格しない
	if currentLevel >= config.MaxUserLevel {
		return false, nil
	}

	// 条件(a): 現レベルのマスター済み教材が規定数以上
	mastered, err := s.matRepo.CountMasteredAtLevel(ctx, s.db, userID, currentLevel)
	if err != nil {
		return false, err
	}
	if mastered < config.LevelUpMasteredCount {
		return false, nil
	}

	// 条件(b): 当日を含まない直前7日間にプランが3件以上あり、
	// 合算完了率 sum(completed)/sum(total) が 0.80 を超える
	from := today.AddDate(0, 0, -config.LevelUpWindowDays)
	stats, err := s.planRepo.CompletionStats(ctx, s.db, userID, from, today)
	if err != nil {
		return false, err
	}
	if len(stats) < config.LevelUpMinPlans {
		return false, nil
	}

	var sumTotal, sumCompleted int
	for _, st := range stats {
		sumTotal += st.TotalItems
		sumCompleted += st.CompletedItems
	}
	if sumTotal == 0 {
		return false, nil
	}
	rate := float64(sumCompleted) / float64(sumTotal)
	if rate <= config.LevelUpCompletionRate {
		return false, nil
	}

	// 昇格の書き込みはCAS。読み取り後に別リクエストが昇格済みなら適用されない。
	rows, err := s.userRepo.UpdateLevelCAS(ctx, s.db, userID, currentLevel, currentLevel+1)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		logger.Info("Level upgrade skipped: level changed concurrently")
		return false, nil
	}

	logger.Info("User level upgraded",
		"new_level", currentLevel+1,
		"mastered_count", mastered,
		"completion_rate", rate,
	)
	return true, nil
}

func (s *progressionService) CheckRetirementProtection(ctx context.Context, userID uuid.UUID, today time.Time) (bool, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID)

	// 当日を含まない直前3日間のプランが対象
	from := today.AddDate(0, 0, -config.RetirementWindowDays)
	stats, err := s.planRepo.CompletionStats(ctx, s.db, userID, from, today)
	if err != nil {
		return false, err
	}
	if len(stats) < config.RetirementMinPlans {
		return false, nil
	}

	// 全プランで完了率 < 0.50 のときだけ発動する
	for _, st := range stats {
		if st.TotalItems == 0 {
			return false, nil
		}
		rate := float64(st.CompletedItems) / float64(st.TotalItems)
		if rate >= config.RetirementCompletionRate {
			return false, nil
		}
	}

	logger.Info("Retirement protection active: suppressing new material slots")
	return true, nil
}
