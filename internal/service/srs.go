// internal/service/srs.go
package service

import (
	"context"
	"time"

	"go_shadowing_keep/internal/config"
	"go_shadowing_keep/internal/middleware"
	"go_shadowing_keep/internal/model"
	"go_shadowing_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// reviewIntervals は復習間隔の固定ラダー(日数)。
// インデックスはインクリメント後の review_count - 1。末尾を超えたら最後の値を使い続ける。
var reviewIntervals = []int{1, 2, 4, 7, 16, 30, 60}

// intervalDays は review_count (インクリメント後) に対応する間隔日数を返します。
func intervalDays(reviewCount int) int {
	idx := reviewCount - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(reviewIntervals) {
		idx = len(reviewIntervals) - 1
	}
	return reviewIntervals[idx]
}

// PracticeOutcome は1回の練習の結果 (UIフローから渡される)
type PracticeOutcome struct {
	SelfRating         *model.SelfRating
	IsPoorPerformance  bool
	CompletedAllStages bool
}

func (o PracticeOutcome) ratingIs(r model.SelfRating) bool {
	return o.SelfRating != nil && *o.SelfRating == r
}

// SRSResult は間隔反復ポリシーの算出結果
type SRSResult struct {
	ReviewCount    int
	NextReviewDate time.Time
	Status         model.MaterialStatus
}

// NextReview は間隔反復ポリシーの純粋関数です。I/Oは行わない。
// ルールは poor → fair → good/default の優先順で評価する。
func NextReview(reviewCount int, status model.MaterialStatus, outcome PracticeOutcome, today time.Time) SRSResult {
	// 1. 不調 (is_poor_performance または自己評価 poor)
	if outcome.IsPoorPerformance || outcome.ratingIs(model.SelfRatingPoor) {
		if outcome.CompletedAllStages {
			// 全ステージは最後までやった → 半分まで巻き戻し (最低1)
			newCount := reviewCount / 2
			if newCount < 1 {
				newCount = 1
			}
			return SRSResult{
				ReviewCount:    newCount,
				NextReviewDate: today.AddDate(0, 0, 1),
				Status:         model.MaterialStatusLearning,
			}
		}
		// 途中離脱 → 完全リセット
		return SRSResult{
			ReviewCount:    0,
			NextReviewDate: today.AddDate(0, 0, 1),
			Status:         model.MaterialStatusLearning,
		}
	}

	newCount := reviewCount + 1
	interval := intervalDays(newCount)

	// 2. まずまず (fair): 間隔を半分に (最低1日)
	if outcome.ratingIs(model.SelfRatingFair) {
		interval = interval / 2
		if interval < 1 {
			interval = 1
		}
		newStatus := status
		if status == model.MaterialStatusUnlearned {
			newStatus = model.MaterialStatusLearning
		}
		return SRSResult{
			ReviewCount:    newCount,
			NextReviewDate: today.AddDate(0, 0, interval),
			Status:         newStatus,
		}
	}

	// 3. good / デフォルト。
	// 間隔はマスター判定より先にラダーから無条件に決まる。マスター直後の
	// 教材にも次の復習日が付く (mastered は「復習終了」ではない)。
	newStatus := status
	if newCount >= config.MasteryThreshold && outcome.CompletedAllStages {
		newStatus = model.MaterialStatusMastered
	} else if status == model.MaterialStatusUnlearned {
		newStatus = model.MaterialStatusLearning
	}
	return SRSResult{
		ReviewCount:    newCount,
		NextReviewDate: today.AddDate(0, 0, interval),
		Status:         newStatus,
	}
}

// SRSUpdater は間隔反復ポリシーの結果を教材行へ楽観的並行制御で適用します。
type SRSUpdater interface {
	// ApplyPracticeResult は read → 純粋計算 → 条件付き write のサイクルを
	// CAS失敗時に最大5回リトライします。尽きたら警告ログを出して黙って諦める
	// (ブロッキングロックではなくベストエフォート)。エラーを返すのはDB障害のみ。
	ApplyPracticeResult(ctx context.Context, userID, materialID uuid.UUID, outcome PracticeOutcome, today time.Time) error
}

type srsUpdater struct {
	db      *gorm.DB
	matRepo repository.MaterialRepository
}

func NewSRSUpdater(db *gorm.DB, matRepo repository.MaterialRepository) SRSUpdater {
	return &srsUpdater{
		db:      db,
		matRepo: matRepo,
	}
}

func (u *srsUpdater) ApplyPracticeResult(ctx context.Context, userID, materialID uuid.UUID, outcome PracticeOutcome, today time.Time) error {
	logger := middleware.GetLogger(ctx).With("user_id", userID, "material_id", materialID)

	for attempt := 1; attempt <= config.CASMaxRetries; attempt++ {
		// リトライごとに必ず読み直す。メモリ上の状態は持ち越さない。
		material, err := u.matRepo.FindByID(ctx, u.db, userID, materialID)
		if err != nil {
			return err
		}

		result := NextReview(material.ReviewCount, material.Status, outcome, today)

		rows, err := u.matRepo.UpdateSRSCAS(ctx, u.db, material,
			result.ReviewCount, result.NextReviewDate, result.Status, today)
		if err != nil {
			return err
		}
		if rows > 0 {
			logger.Debug("SRS state updated",
				"review_count", result.ReviewCount,
				"next_review_date", result.NextReviewDate,
				"status", result.Status,
				"attempt", attempt,
			)
			return nil
		}
		logger.Debug("SRS CAS conflict, retrying", "attempt", attempt)
	}

	// リトライ上限到達。呼び出し元は稀に古い間隔が残ることを許容する。
	logger.Warn("SRS update gave up after max CAS retries", "retries", config.CASMaxRetries)
	return nil
}
