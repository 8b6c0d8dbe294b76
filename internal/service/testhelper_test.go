// internal/service/testhelper_test.go
package service

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"go_shadowing_keep/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	// テスト中はサービス内部のログを抑制
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

// --- テストヘルパー関数 (インメモリDBセットアップ) ---
// テストごとに独立したインメモリDBを作る (名前付き共有メモリDB)。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // テスト中はログを抑制
		// ユニーク制約違反を gorm.ErrDuplicatedKey に正規化する (本番と同じ設定)
		TranslateError: true,
	})
	require.NoError(t, err, "failed to connect test database")

	err = db.AutoMigrate(
		&model.User{},
		&model.Material{},
		&model.DailyPlan{},
		&model.PlanItem{},
		&model.PracticeRecord{},
	)
	require.NoError(t, err, "failed to migrate test database")
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, level, dailyMinutes int) *model.User {
	t.Helper()
	user := &model.User{
		UserID:       uuid.New(),
		Name:         "test-user",
		Level:        level,
		DailyMinutes: dailyMinutes,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createTestMaterial は前処理済み(done)の教材を1件作ります。
func createTestMaterial(t *testing.T, db *gorm.DB, userID uuid.UUID, mutate func(m *model.Material)) *model.Material {
	t.Helper()
	m := &model.Material{
		MaterialID:       uuid.New(),
		UserID:           userID,
		Sentence:         "The quick brown fox jumps over the lazy dog. " + uuid.NewString(),
		Level:            1,
		Status:           model.MaterialStatusUnlearned,
		PreprocessStatus: model.PreprocessStatusDone,
	}
	if mutate != nil {
		mutate(m)
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

// createTestPlan は過去日の完了統計を作るためのプラン行です (アイテムなし)。
func createTestPlan(t *testing.T, db *gorm.DB, userID uuid.UUID, planDate time.Time, totalItems, completedItems int) *model.DailyPlan {
	t.Helper()
	plan := &model.DailyPlan{
		PlanID:         uuid.New(),
		UserID:         userID,
		PlanDate:       planDate,
		TotalItems:     totalItems,
		CompletedItems: completedItems,
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func createTestPlanItem(t *testing.T, db *gorm.DB, planID, materialID uuid.UUID, order int, itemType model.PlanItemType, status model.PlanItemStatus) *model.PlanItem {
	t.Helper()
	item := &model.PlanItem{
		PlanItemID: uuid.New(),
		PlanID:     planID,
		MaterialID: materialID,
		ItemOrder:  order,
		ItemType:   itemType,
		Status:     status,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func datePtr(t time.Time) *time.Time {
	return &t
}
