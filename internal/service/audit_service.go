// internal/service/audit_service.go
package service

import (
	"context"
	"time"

	"go_shadowing_keep/internal/config"
	"go_shadowing_keep/internal/middleware"
	"go_shadowing_keep/internal/model"
	"go_shadowing_keep/internal/repository"

	"gorm.io/gorm"
)

// AuditService はコアが守るべき不変条件の違反を読み取り専用で走査します。
// 検出専用で修復はしない。オペレーター向けエンドポイントからオンデマンドで実行される。
type AuditService interface {
	RunAudit(ctx context.Context) (*model.AuditReport, error)
}

type auditService struct {
	db        *gorm.DB
	auditRepo repository.AuditRepository
	cfg       *config.Config
}

func NewAuditService(db *gorm.DB, auditRepo repository.AuditRepository, cfg *config.Config) AuditService {
	return &auditService{
		db:        db,
		auditRepo: auditRepo,
		cfg:       cfg,
	}
}

// auditCheck は1つの整合性チェックの定義
type auditCheck struct {
	name     string
	severity model.AuditSeverity
	run      func(ctx context.Context, db *gorm.DB, limit int) (int64, []string, error)
}

func (s *auditService) RunAudit(ctx context.Context) (*model.AuditReport, error) {
	logger := middleware.GetLogger(ctx)
	limit := s.cfg.App.AuditSampleLimit

	checks := []auditCheck{
		{
			// §完了トランザクションの飽和加算があれば構造的に起き得ない。
			// 検出されたらトランザクションを迂回した書き込みがある。
			name:     "plan_completed_items_exceeds_total",
			severity: model.AuditSeverityError,
			run:      s.auditRepo.FindOvercountedPlans,
		},
		{
			// カウンタドリフト: completed_items と completed アイテム実数の不一致
			name:     "plan_counter_drift",
			severity: model.AuditSeverityError,
			run:      s.auditRepo.FindDriftedPlanCounters,
		},
		{
			// completed なのにレコードなし: 補償の失敗か迂回
			name:     "completed_item_without_record",
			severity: model.AuditSeverityError,
			run:      s.auditRepo.FindCompletedItemsWithoutRecord,
		},
		{
			// レコードはあるが状態遷移が無い (挿入とクレームの間のクラッシュ等)
			name:     "record_without_completed_item",
			severity: model.AuditSeverityWarn,
			run:      s.auditRepo.FindRecordsWithoutCompletedItem,
		},
		{
			// クライアント冪等トークンの重複
			name:     "duplicate_client_op_id",
			severity: model.AuditSeverityError,
			run:      s.auditRepo.FindDuplicateClientOps,
		},
	}

	report := &model.AuditReport{
		GeneratedAt: time.Now().UTC(),
		Findings:    make([]model.AuditFinding, 0, len(checks)),
	}

	// 各チェックは独立していて、毎回すべて実行する
	for _, check := range checks {
		count, samples, err := check.run(ctx, s.db, limit)
		if err != nil {
			logger.Error("Audit check failed", "check", check.name, "error", err)
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "監査クエリの実行に失敗しました。", "", err)
		}
		if samples == nil {
			samples = []string{}
		}
		report.Findings = append(report.Findings, model.AuditFinding{
			Check:     check.name,
			Severity:  check.severity,
			Count:     count,
			SampleIDs: samples,
		})
		if count > 0 {
			logger.Warn("Audit check found violations", "check", check.name, "count", count)
		}
	}

	return report, nil
}
