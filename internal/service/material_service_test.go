// internal/service/material_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"go_shadowing_keep/internal/model"
	"go_shadowing_keep/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMaterialServiceForTest(db *gorm.DB) MaterialService {
	return NewMaterialService(db, repository.NewGormMaterialRepository())
}

func Test_normalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "空文字はそのまま", in: "", want: ""},
		{name: "ソートされる", in: "travel,business", want: "business,travel"},
		{name: "重複と空白を除去", in: " travel, business ,travel,", want: "business,travel"},
		{name: "1要素", in: "daily", want: "daily"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeTags(tt.in))
		})
	}
}

func Test_materialService_CreateMaterial(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 未学習・前処理pendingで作成される", func(t *testing.T) {
		db := setupTestDB(t)
		materialService := newMaterialServiceForTest(db)
		user := createTestUser(t, db, 1, 20)

		created, err := materialService.CreateMaterial(ctx, user.UserID, &model.CreateMaterialRequest{
			Sentence: "She sells seashells by the seashore.",
			Level:    2,
			Tags:     "tongue-twister, daily",
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, model.MaterialStatusUnlearned, created.Status)
		assert.Equal(t, model.PreprocessStatusPending, created.PreprocessStatus)
		assert.Equal(t, 0, created.ReviewCount)
		assert.Equal(t, "daily,tongue-twister", created.Tags)
	})

	t.Run("異常系: 同じ文の教材は重複として拒否", func(t *testing.T) {
		db := setupTestDB(t)
		materialService := newMaterialServiceForTest(db)
		user := createTestUser(t, db, 1, 20)

		req := &model.CreateMaterialRequest{Sentence: "Practice makes perfect.", Level: 1}
		_, err := materialService.CreateMaterial(ctx, user.UserID, req)
		require.NoError(t, err)

		_, err = materialService.CreateMaterial(ctx, user.UserID, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrConflict))
	})

	t.Run("正常系: 別ユーザーなら同じ文でも作成できる", func(t *testing.T) {
		db := setupTestDB(t)
		materialService := newMaterialServiceForTest(db)
		user1 := createTestUser(t, db, 1, 20)
		user2 := createTestUser(t, db, 1, 20)

		req := &model.CreateMaterialRequest{Sentence: "Practice makes perfect.", Level: 1}
		_, err := materialService.CreateMaterial(ctx, user1.UserID, req)
		require.NoError(t, err)
		_, err = materialService.CreateMaterial(ctx, user2.UserID, req)
		require.NoError(t, err)
	})
}

func Test_materialService_ListMaterials(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	materialService := newMaterialServiceForTest(db)
	user := createTestUser(t, db, 1, 20)

	createTestMaterial(t, db, user.UserID, func(m *model.Material) { m.Level = 1 })
	createTestMaterial(t, db, user.UserID, func(m *model.Material) {
		m.Level = 2
		m.Status = model.MaterialStatusLearning
	})
	other := createTestUser(t, db, 1, 20)
	createTestMaterial(t, db, other.UserID, nil)

	all, err := materialService.ListMaterials(ctx, user.UserID, model.ListMaterialsQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2, "他人の教材は含まない")

	learning := model.MaterialStatusLearning
	filtered, err := materialService.ListMaterials(ctx, user.UserID, model.ListMaterialsQuery{Status: &learning})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 2, filtered[0].Level)
}

func Test_materialService_DeleteMaterial(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	materialService := newMaterialServiceForTest(db)
	user := createTestUser(t, db, 1, 20)
	m := createTestMaterial(t, db, user.UserID, nil)

	require.NoError(t, materialService.DeleteMaterial(ctx, user.UserID, m.MaterialID))

	// 論理削除: 通常クエリからは見えない
	_, err := materialService.GetMaterial(ctx, user.UserID, m.MaterialID)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	var count int64
	require.NoError(t, db.Unscoped().Model(&model.Material{}).Where("material_id = ?", m.MaterialID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "行自体は残る")

	t.Run("異常系: 二重削除は NotFound", func(t *testing.T) {
		err := materialService.DeleteMaterial(ctx, user.UserID, m.MaterialID)
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}

func Test_materialService_ApplyPreprocessResult(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	materialService := newMaterialServiceForTest(db)
	user := createTestUser(t, db, 1, 20)
	m := createTestMaterial(t, db, user.UserID, func(mat *model.Material) {
		mat.PreprocessStatus = model.PreprocessStatusProcessing
	})

	req := &model.PreprocessResultRequest{
		Status:          model.PreprocessStatusDone,
		Translation:     "素早い茶色の狐",
		PauseMarks:      "3,7",
		AudioNormalPath: "audio/normal/" + m.MaterialID.String() + ".mp3",
	}
	require.NoError(t, materialService.ApplyPreprocessResult(ctx, user.UserID, m.MaterialID, req))

	got, err := materialService.GetMaterial(ctx, user.UserID, m.MaterialID)
	require.NoError(t, err)
	assert.Equal(t, model.PreprocessStatusDone, got.PreprocessStatus)
	assert.Equal(t, "素早い茶色の狐", got.Translation)
	assert.Equal(t, "3,7", got.PauseMarks)

	t.Run("異常系: 存在しない教材", func(t *testing.T) {
		err := materialService.ApplyPreprocessResult(ctx, user.UserID, uuid.New(), req)
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}
