// internal/service/practice_service.go
package service

import (
	"context"
	"log/slog"
	"time"

	"go_shadowing_keep/internal/config"
	"go_shadowing_keep/internal/middleware"
	"go_shadowing_keep/internal/model"
	"go_shadowing_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PracticeService は練習完了トランザクションのオーケストレーターです。
//
// 書き込みは クレーム → カウンタ加算 → レコード挿入 → 間隔反復更新 の順に
// 逐次実行し、途中で失敗したらベストエフォートの補償で巻き戻す。
// ストリーク更新とレベル判定は非クリティカル: 失敗してもログに残して握りつぶし、
// 完了自体は成功として返す (学習状態の本体は既に永続化済みのため)。
type PracticeService interface {
	// Complete は1回の練習完了を記録します。
	// 同じプランアイテムへの二重送信は ErrAlreadyCompleted の「拒否」になり、
	// クライアントは安全にリトライできる (二重計上されない)。
	Complete(ctx context.Context, userID uuid.UUID, req *model.CompletePracticeRequest, today time.Time) (*model.CompletePracticeResponse, error)
}

type practiceService struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	planRepo    repository.PlanRepository
	recordRepo  repository.RecordRepository
	srsUpdater  SRSUpdater
	progression ProgressionService
}

func NewPracticeService(db *gorm.DB, userRepo repository.UserRepository, planRepo repository.PlanRepository, recordRepo repository.RecordRepository, srsUpdater SRSUpdater, progression ProgressionService) PracticeService {
	return &practiceService{
		db:          db,
		userRepo:    userRepo,
		planRepo:    planRepo,
		recordRepo:  recordRepo,
		srsUpdater:  srsUpdater,
		progression: progression,
	}
}

// completionState は完了トランザクションの進行状況。
// どのステップまで成功したかを持ち、補償パスがこれを見て巻き戻す。
type completionState struct {
	planID      uuid.UUID
	planItemID  uuid.UUID
	prevStatus  model.PlanItemStatus
	claimed     bool
	incremented bool
	recordID    *uuid.UUID
}

func (s *practiceService) Complete(ctx context.Context, userID uuid.UUID, req *model.CompletePracticeRequest, today time.Time) (*model.CompletePracticeResponse, error) {
	logger := middleware.GetLogger(ctx).With(
		"user_id", userID,
		"material_id", req.MaterialID,
	)

	state := &completionState{}

	// --- ステップ1: 適格性チェックと exactly-once クレーム (プランアイテムがある場合のみ) ---
	if req.PlanItemID != nil {
		logger = logger.With("plan_item_id", *req.PlanItemID)

		item, err := s.planRepo.FindItemByID(ctx, s.db, *req.PlanItemID)
		if err != nil {
			return nil, err
		}
		plan, err := s.planRepo.FindByID(ctx, s.db, item.PlanID)
		if err != nil {
			return nil, err
		}
		if plan.UserID != userID {
			return nil, model.ErrForbidden
		}
		if item.MaterialID != req.MaterialID {
			return nil, model.NewAppError("INVALID_INPUT", "プランアイテムと教材が一致しません。", "material_id", model.ErrInvalidInput)
		}

		// pending / in_progress 以外は既に完了済みとして拒否
		if item.Status != model.PlanItemStatusPending && item.Status != model.PlanItemStatusInProgress {
			return nil, model.NewAppError("ALREADY_COMPLETED", "このアイテムは既に完了しています。", "", model.ErrAlreadyCompleted)
		}

		// 読み取ったステータスを述語にしたCAS遷移。0行なら並行リクエストに負けた。
		rows, err := s.planRepo.UpdateItemStatusCAS(ctx, s.db, item.PlanItemID, item.Status, model.PlanItemStatusCompleted)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			logger.Info("Completion claim lost to concurrent request")
			return nil, model.NewAppError("ALREADY_COMPLETED", "このアイテムは既に完了しています。", "", model.ErrAlreadyCompleted)
		}
		state.planID = plan.PlanID
		state.planItemID = item.PlanItemID
		state.prevStatus = item.Status
		state.claimed = true

		// --- ステップ2: プランの completed_items を加算 ---
		// total_items を超えないよう述語で飽和させる (不変条件チェックではなく防御)。
		incRows, err := s.planRepo.IncrementCompleted(ctx, s.db, plan.PlanID)
		if err != nil {
			s.compensate(ctx, logger, state)
			return nil, err
		}
		state.incremented = incRows > 0
		if incRows == 0 {
			logger.Warn("completed_items already saturated, increment skipped", "plan_id", plan.PlanID)
		}
	}

	// --- ステップ3: 不変の練習レコードを挿入 ---
	record := &model.PracticeRecord{
		RecordID:           uuid.New(),
		UserID:             userID,
		MaterialID:         req.MaterialID,
		PlanItemID:         req.PlanItemID,
		CompletedAllStages: req.CompletedAllStages,
		SelfRating:         req.SelfRating,
		IsPoorPerformance:  req.IsPoorPerformance,
		DurationSeconds:    req.DurationSeconds,
		ClientOpID:         req.ClientOpID,
	}
	if err := s.recordRepo.Create(ctx, s.db, record); err != nil {
		logger.Error("Failed to insert practice record", "error", err)
		s.compensate(ctx, logger, state)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "練習レコードの保存に失敗しました。", "", err)
	}
	state.recordID = &record.RecordID

	// --- ステップ4: 間隔反復の更新 (クリティカル: 失敗なら全体を中止) ---
	outcome := PracticeOutcome{
		SelfRating:         req.SelfRating,
		IsPoorPerformance:  req.IsPoorPerformance,
		CompletedAllStages: req.CompletedAllStages,
	}
	if err := s.srsUpdater.ApplyPracticeResult(ctx, userID, req.MaterialID, outcome, today); err != nil {
		logger.Error("Failed to update SRS state", "error", err)
		s.compensate(ctx, logger, state)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "学習状態の更新に失敗しました。", "", err)
	}

	// --- ステップ5: ストリーク更新とレベル判定 (非クリティカル) ---
	if err := s.updateStreak(ctx, userID, today); err != nil {
		logger.Warn("Streak update failed (non-critical, swallowed)", "error", err)
	}
	if user, err := s.userRepo.FindByID(ctx, s.db, userID); err != nil {
		logger.Warn("Level check skipped: failed to load user (non-critical)", "error", err)
	} else if _, err := s.progression.CheckLevelProgression(ctx, userID, user.Level, today); err != nil {
		logger.Warn("Level progression check failed (non-critical, swallowed)", "error", err)
	}

	logger.Info("Practice completed", "record_id", record.RecordID)
	return &model.CompletePracticeResponse{RecordID: record.RecordID}, nil
}

// compensate はステップ1〜4の失敗時のベストエフォート補償です。
//
// まずアイテムを元のステータスへ巻き戻す (completed であることを述語にCAS)。
// 巻き戻しが実際に適用されたときだけカウンタを減算しレコードを削除する。
// 巻き戻しが適用されなかった場合はレコードを意図的に残す:
// 「completed なのにレコードが無い」状態を作るくらいなら孤児レコードの方がましで、
// どちらにせよ監査バッチが検出できる。
func (s *practiceService) compensate(ctx context.Context, logger *slog.Logger, state *completionState) {
	if !state.claimed {
		// クレームしていない (プラン外練習) なら、挿入済みレコードの削除だけ
		if state.recordID != nil {
			if err := s.recordRepo.Delete(ctx, s.db, *state.recordID); err != nil {
				logger.Error("Compensation: failed to delete practice record", "record_id", *state.recordID, "error", err)
			}
		}
		return
	}

	rows, err := s.planRepo.UpdateItemStatusCAS(ctx, s.db, state.planItemID,
		model.PlanItemStatusCompleted, state.prevStatus)
	if err != nil {
		logger.Error("Compensation: failed to revert plan item status", "error", err)
		return
	}
	if rows == 0 {
		// 別経路で既に巻き戻っている等。レコードは削除しない。
		logger.Warn("Compensation: revert not applied, keeping practice record",
			"record_id", state.recordID)
		return
	}

	if state.incremented {
		if _, err := s.planRepo.DecrementCompleted(ctx, s.db, state.planID); err != nil {
			logger.Error("Compensation: failed to decrement completed_items", "plan_id", state.planID, "error", err)
		}
	}
	if state.recordID != nil {
		if err := s.recordRepo.Delete(ctx, s.db, *state.recordID); err != nil {
			logger.Error("Compensation: failed to delete practice record", "record_id", *state.recordID, "error", err)
		}
	}
	logger.Info("Compensation applied, plan item reverted", "prev_status", state.prevStatus)
}

// updateStreak はストリーク関連4カラムのCAS付き read-modify-write です。
// 当日すでに練習済みなら何もしない。CAS失敗は最大5回リトライし、
// 尽きたら警告ログを出して諦める (間隔反復更新と同じパターン)。
func (s *practiceService) updateStreak(ctx context.Context, userID uuid.UUID, today time.Time) error {
	logger := middleware.GetLogger(ctx).With("user_id", userID)

	for attempt := 1; attempt <= config.CASMaxRetries; attempt++ {
		user, err := s.userRepo.FindByID(ctx, s.db, userID)
		if err != nil {
			return err
		}

		// 当日2回目以降の練習はストリークに影響しない
		if user.LastPracticeDate != nil && user.LastPracticeDate.Equal(today) {
			return nil
		}

		newStreak := 1
		yesterday := today.AddDate(0, 0, -1)
		if user.LastPracticeDate != nil && user.LastPracticeDate.Equal(yesterday) {
			newStreak = user.StreakDays + 1
		}
		newMax := user.MaxStreakDays
		if newStreak > newMax {
			newMax = newStreak
		}

		rows, err := s.userRepo.UpdateStreakCAS(ctx, s.db, user,
			newStreak, newMax, user.TotalPracticeDays+1, today)
		if err != nil {
			return err
		}
		if rows > 0 {
			logger.Debug("Streak updated", "streak_days", newStreak, "attempt", attempt)
			return nil
		}
		logger.Debug("Streak CAS conflict, retrying", "attempt", attempt)
	}

	logger.Warn("Streak update gave up after max CAS retries", "retries", config.CASMaxRetries)
	return nil
}
