// internal/service/plan_service.go
package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"go_shadowing_keep/internal/config"
	"go_shadowing_keep/internal/middleware"
	"go_shadowing_keep/internal/model"
	"go_shadowing_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlanService はデイリープランの生成・再生成・取得を担います。
// 生成は (ユーザー, 日付) につき1回で冪等。並行して呼ばれても
// ストレージのユニーク制約で1つのプランに収束する。
type PlanService interface {
	// Generate は planDate のプランを生成します。
	// 既にプランがある場合・出題候補が空の場合は nil を返す (エラーではない)。
	Generate(ctx context.Context, userID uuid.UUID, planDate time.Time) (*model.GeneratePlanResponse, error)

	// Regenerate は未着手のプランを破棄して作り直します。
	// 1件でも pending 以外のアイテムがあれば ErrPlanStarted で拒否する
	// (部分的な作り直しはしない。操作全体を中止する)。
	Regenerate(ctx context.Context, userID uuid.UUID, planDate time.Time) (*model.GeneratePlanResponse, error)

	GetPlan(ctx context.Context, userID uuid.UUID, planDate time.Time) (*model.PlanResponse, error)

	// StartItem は pending → in_progress の遷移。既に in_progress なら何もしない。
	// completed のアイテムは拒否する。
	StartItem(ctx context.Context, userID, planItemID uuid.UUID) error
}

type planService struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	matRepo     repository.MaterialRepository
	planRepo    repository.PlanRepository
	progression ProgressionService
	cfg         *config.Config
}

func NewPlanService(db *gorm.DB, userRepo repository.UserRepository, matRepo repository.MaterialRepository, planRepo repository.PlanRepository, progression ProgressionService, cfg *config.Config) PlanService {
	return &planService{
		db:          db,
		userRepo:    userRepo,
		matRepo:     matRepo,
		planRepo:    planRepo,
		progression: progression,
		cfg:         cfg,
	}
}

func (s *planService) Generate(ctx context.Context, userID uuid.UUID, planDate time.Time) (*model.GeneratePlanResponse, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID, "plan_date", planDate.Format("2006-01-02"))

	// 冪等チェック: 既存プランがあれば副作用なしで即終了
	if existing, err := s.planRepo.FindByUserAndDate(ctx, s.db, userID, planDate); err == nil {
		logger.Debug("Plan already exists, skipping generation", "plan_id", existing.PlanID)
		return nil, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	// スロット数 = floor(daily_minutes / 2)、上限50
	totalSlots := user.DailyMinutes / config.MinutesPerSlot
	if totalSlots > s.cfg.App.MaxDailySlots {
		totalSlots = s.cfg.App.MaxDailySlots
	}
	if totalSlots < 1 {
		logger.Info("Daily minutes budget too small, no plan generated")
		return nil, nil
	}

	// 復習候補: 期限の早い順
	reviews, err := s.matRepo.FindDueReviews(ctx, s.db, userID, planDate, totalSlots)
	if err != nil {
		return nil, err
	}

	// スロットが2以上あれば新規枠を最低1つ残す (復習は全体の8割まで)
	reviewCap := totalSlots
	if totalSlots > 1 {
		ratioCap := int(math.Ceil(float64(totalSlots) * config.ReviewSlotRatio))
		reviewCap = totalSlots - 1
		if ratioCap < reviewCap {
			reviewCap = ratioCap
		}
	}
	if len(reviews) > reviewCap {
		reviews = reviews[:reviewCap]
	}

	// 残りスロットは新規教材へ。ただしリタイア保護が発動していれば全部抑止する
	// (復習が抑止されることはない)。
	remaining := totalSlots - len(reviews)
	var newMaterials []*model.Material
	if remaining > 0 {
		reduceNew, err := s.progression.CheckRetirementProtection(ctx, userID, planDate)
		if err != nil {
			return nil, err
		}
		if reduceNew {
			remaining = 0
		}
	}
	if remaining > 0 {
		newMaterials, err = s.matRepo.FindNewCandidates(ctx, s.db, userID, user.Level, remaining)
		if err != nil {
			return nil, err
		}
	}

	if len(reviews)+len(newMaterials) == 0 {
		logger.Info("No practice candidates, no plan generated")
		return nil, nil
	}

	// 最終並び: 復習をレベル昇順 → 新規をタグ集合(辞書順)・レベル昇順でグループ化。
	// 復習が必ず新規より先に来る。
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Level < reviews[j].Level
	})
	sort.SliceStable(newMaterials, func(i, j int) bool {
		if newMaterials[i].Tags != newMaterials[j].Tags {
			return newMaterials[i].Tags < newMaterials[j].Tags
		}
		return newMaterials[i].Level < newMaterials[j].Level
	})

	plan := &model.DailyPlan{
		PlanID:     uuid.New(),
		UserID:     userID,
		PlanDate:   planDate,
		TotalItems: len(reviews) + len(newMaterials),
	}

	items := make([]*model.PlanItem, 0, plan.TotalItems)
	order := 1
	for _, m := range reviews {
		items = append(items, &model.PlanItem{
			PlanItemID: uuid.New(),
			PlanID:     plan.PlanID,
			MaterialID: m.MaterialID,
			ItemOrder:  order,
			ItemType:   model.PlanItemTypeReview,
			Status:     model.PlanItemStatusPending,
		})
		order++
	}
	for _, m := range newMaterials {
		items = append(items, &model.PlanItem{
			PlanItemID: uuid.New(),
			PlanID:     plan.PlanID,
			MaterialID: m.MaterialID,
			ItemOrder:  order,
			ItemType:   model.PlanItemTypeNew,
			Status:     model.PlanItemStatusPending,
		})
		order++
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.planRepo.CreateWithItems(ctx, tx, plan, items)
	})
	if err != nil {
		// (user_id, plan_date) のユニーク制約違反 = 並行生成に負けただけ。
		// エラーにせず勝者のプランを読み直して返す。
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Info("Lost plan generation race, returning winner's plan")
			winner, findErr := s.planRepo.FindByUserAndDate(ctx, s.db, userID, planDate)
			if findErr != nil {
				return nil, findErr
			}
			return &model.GeneratePlanResponse{
				PlanID:     winner.PlanID,
				PlanDate:   winner.PlanDate,
				TotalItems: winner.TotalItems,
				Created:    false,
			}, nil
		}
		logger.Error("Failed to persist daily plan", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "デイリープランの保存に失敗しました。", "", err)
	}

	logger.Info("Daily plan generated",
		"plan_id", plan.PlanID,
		"total_items", plan.TotalItems,
		"review_items", len(reviews),
		"new_items", len(newMaterials),
	)
	return &model.GeneratePlanResponse{
		PlanID:     plan.PlanID,
		PlanDate:   plan.PlanDate,
		TotalItems: plan.TotalItems,
		Created:    true,
	}, nil
}

func (s *planService) Regenerate(ctx context.Context, userID uuid.UUID, planDate time.Time) (*model.GeneratePlanResponse, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID, "plan_date", planDate.Format("2006-01-02"))

	plan, err := s.planRepo.FindByUserAndDate(ctx, s.db, userID, planDate)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// プランが無ければそのまま生成に委譲
			return s.Generate(ctx, userID, planDate)
		}
		return nil, err
	}

	nonPending, err := s.planRepo.CountNonPendingItems(ctx, s.db, plan.PlanID)
	if err != nil {
		return nil, err
	}
	if nonPending > 0 {
		logger.Info("Regeneration refused: plan has started items", "non_pending", nonPending)
		return nil, model.NewAppError("PLAN_STARTED", "着手済みのプランは再生成できません。", "", model.ErrPlanStarted)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.planRepo.DeletePlanAndItems(ctx, tx, plan.PlanID)
	})
	if err != nil {
		// ガード (completed_items = 0) に弾かれた = チェック後に誰かが完了させた
		if errors.Is(err, model.ErrConflict) {
			return nil, model.NewAppError("PLAN_STARTED", "着手済みのプランは再生成できません。", "", model.ErrPlanStarted)
		}
		return nil, err
	}

	logger.Info("Unstarted plan discarded, regenerating", "old_plan_id", plan.PlanID)
	return s.Generate(ctx, userID, planDate)
}

func (s *planService) GetPlan(ctx context.Context, userID uuid.UUID, planDate time.Time) (*model.PlanResponse, error) {
	plan, err := s.planRepo.FindByUserAndDateWithItems(ctx, s.db, userID, planDate)
	if err != nil {
		return nil, err
	}

	items := make([]model.PlanItemResponse, 0, len(plan.Items))
	for i := range plan.Items {
		item := plan.Items[i]
		items = append(items, model.PlanItemResponse{
			PlanItemID: item.PlanItemID,
			ItemOrder:  item.ItemOrder,
			ItemType:   item.ItemType,
			Status:     item.Status,
			Material:   item.Material,
		})
	}

	return &model.PlanResponse{
		PlanID:         plan.PlanID,
		PlanDate:       plan.PlanDate,
		TotalItems:     plan.TotalItems,
		CompletedItems: plan.CompletedItems,
		Items:          items,
	}, nil
}

func (s *planService) StartItem(ctx context.Context, userID, planItemID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("user_id", userID, "plan_item_id", planItemID)

	item, err := s.planRepo.FindItemByID(ctx, s.db, planItemID)
	if err != nil {
		return err
	}
	plan, err := s.planRepo.FindByID(ctx, s.db, item.PlanID)
	if err != nil {
		return err
	}
	if plan.UserID != userID {
		return model.ErrForbidden
	}

	switch item.Status {
	case model.PlanItemStatusCompleted:
		return model.NewAppError("ALREADY_COMPLETED", "このアイテムは既に完了しています。", "", model.ErrAlreadyCompleted)
	case model.PlanItemStatusInProgress:
		return nil
	}

	rows, err := s.planRepo.UpdateItemStatusCAS(ctx, s.db, planItemID,
		model.PlanItemStatusPending, model.PlanItemStatusInProgress)
	if err != nil {
		return err
	}
	if rows == 0 {
		// 読み取り後に状態が変わった。完了済みなら拒否、in_progress なら成功扱い。
		current, err := s.planRepo.FindItemByID(ctx, s.db, planItemID)
		if err != nil {
			return err
		}
		if current.Status == model.PlanItemStatusCompleted {
			return model.NewAppError("ALREADY_COMPLETED", "このアイテムは既に完了しています。", "", model.ErrAlreadyCompleted)
		}
	}

	logger.Debug("Plan item started")
	return nil
}
