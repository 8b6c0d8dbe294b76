// internal/service/audit_service_test.go
package service

import (
	"context"
	"testing"

	"go_shadowing_keep/internal/clock"
	"go_shadowing_keep/internal/config"
	"go_shadowing_keep/internal/model"
	"go_shadowing_keep/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuditServiceForTest(db *gorm.DB) AuditService {
	cfg := &config.Config{App: config.AppConfig{AuditSampleLimit: config.DefaultAuditSampleLimit}}
	return NewAuditService(db, repository.NewGormAuditRepository(), cfg)
}

func findingByCheck(t *testing.T, report *model.AuditReport, check string) model.AuditFinding {
	t.Helper()
	for _, f := range report.Findings {
		if f.Check == check {
			return f
		}
	}
	t.Fatalf("finding not found: %s", check)
	return model.AuditFinding{}
}

func Test_auditService_RunAudit_Clean(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	auditService := newAuditServiceForTest(db)
	today := clock.Date(2025, 3, 10)

	// 整合した状態: completed アイテム1件 + 対応レコード1件、カウンタ一致
	user := createTestUser(t, db, 1, 20)
	m := createTestMaterial(t, db, user.UserID, nil)
	plan := createTestPlan(t, db, user.UserID, today, 1, 1)
	item := createTestPlanItem(t, db, plan.PlanID, m.MaterialID, 1, model.PlanItemTypeNew, model.PlanItemStatusCompleted)
	require.NoError(t, db.Create(&model.PracticeRecord{
		RecordID:   uuid.New(),
		UserID:     user.UserID,
		MaterialID: m.MaterialID,
		PlanItemID: &item.PlanItemID,
	}).Error)

	report, err := auditService.RunAudit(ctx)
	require.NoError(t, err)
	require.Len(t, report.Findings, 5, "全チェックが毎回レポートに載る")
	for _, f := range report.Findings {
		assert.Equal(t, int64(0), f.Count, "check %s", f.Check)
		assert.Empty(t, f.SampleIDs)
	}
}

func Test_auditService_RunAudit_DetectsViolations(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	auditService := newAuditServiceForTest(db)
	today := clock.Date(2025, 3, 10)

	user := createTestUser(t, db, 1, 20)
	m := createTestMaterial(t, db, user.UserID, nil)

	// 違反1: completed_items > total_items (カウンタドリフトにも引っかかる)
	overPlan := createTestPlan(t, db, user.UserID, today.AddDate(0, 0, -1), 2, 3)

	// 違反2: completed なのにレコードなし
	plan2 := createTestPlan(t, db, user.UserID, today.AddDate(0, 0, -2), 1, 1)
	orphanItem := createTestPlanItem(t, db, plan2.PlanID, m.MaterialID, 1, model.PlanItemTypeNew, model.PlanItemStatusCompleted)

	// 違反3: レコードはあるがアイテムは pending のまま
	plan3 := createTestPlan(t, db, user.UserID, today.AddDate(0, 0, -3), 1, 0)
	staleItem := createTestPlanItem(t, db, plan3.PlanID, m.MaterialID, 1, model.PlanItemTypeNew, model.PlanItemStatusPending)
	staleRecord := &model.PracticeRecord{
		RecordID:   uuid.New(),
		UserID:     user.UserID,
		MaterialID: m.MaterialID,
		PlanItemID: &staleItem.PlanItemID,
	}
	require.NoError(t, db.Create(staleRecord).Error)

	// 違反4: 同じ client_op_id のレコードが2件
	opID := "op-12345"
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&model.PracticeRecord{
			RecordID:   uuid.New(),
			UserID:     user.UserID,
			MaterialID: m.MaterialID,
			ClientOpID: &opID,
		}).Error)
	}

	report, err := auditService.RunAudit(ctx)
	require.NoError(t, err)

	over := findingByCheck(t, report, "plan_completed_items_exceeds_total")
	assert.Equal(t, int64(1), over.Count)
	assert.Contains(t, over.SampleIDs, overPlan.PlanID.String())
	assert.Equal(t, model.AuditSeverityError, over.Severity)

	drift := findingByCheck(t, report, "plan_counter_drift")
	// overPlan (3 vs 0) と plan3 は一致 (0=0) なのでドリフトは overPlan のみ
	assert.Equal(t, int64(1), drift.Count)
	assert.Contains(t, drift.SampleIDs, overPlan.PlanID.String())

	noRecord := findingByCheck(t, report, "completed_item_without_record")
	assert.Equal(t, int64(1), noRecord.Count)
	assert.Contains(t, noRecord.SampleIDs, orphanItem.PlanItemID.String())

	stale := findingByCheck(t, report, "record_without_completed_item")
	assert.Equal(t, int64(1), stale.Count)
	assert.Contains(t, stale.SampleIDs, staleRecord.RecordID.String())
	assert.Equal(t, model.AuditSeverityWarn, stale.Severity)

	dup := findingByCheck(t, report, "duplicate_client_op_id")
	assert.Equal(t, int64(1), dup.Count)
	require.Len(t, dup.SampleIDs, 1)
	assert.Contains(t, dup.SampleIDs[0], opID)
}
