// internal/service/material_service.go
package service

import (
	"context"
	"sort"
	"strings"

	"go_shadowing_keep/internal/middleware"
	"go_shadowing_keep/internal/model"
	"go_shadowing_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaterialService interface {
	CreateMaterial(ctx context.Context, userID uuid.UUID, req *model.CreateMaterialRequest) (*model.Material, error)
	GetMaterial(ctx context.Context, userID, materialID uuid.UUID) (*model.Material, error)
	ListMaterials(ctx context.Context, userID uuid.UUID, query model.ListMaterialsQuery) ([]*model.Material, error)
	DeleteMaterial(ctx context.Context, userID, materialID uuid.UUID) error
	// ApplyPreprocessResult は外部前処理パイプラインの成果物の書き戻し口です。
	ApplyPreprocessResult(ctx context.Context, userID, materialID uuid.UUID, req *model.PreprocessResultRequest) error
}

type materialService struct {
	db      *gorm.DB
	matRepo repository.MaterialRepository
}

func NewMaterialService(db *gorm.DB, matRepo repository.MaterialRepository) MaterialService {
	return &materialService{
		db:      db,
		matRepo: matRepo,
	}
}

// normalizeTags はタグ集合を正規化して直列化します (重複除去・ソート・カンマ区切り)。
// プラン生成時のグループ化はこの文字列の辞書順に乗る。
func normalizeTags(tags string) string {
	if tags == "" {
		return ""
	}
	seen := make(map[string]struct{})
	var parts []string
	for _, t := range strings.Split(tags, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		parts = append(parts, t)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (s *materialService) CreateMaterial(ctx context.Context, userID uuid.UUID, req *model.CreateMaterialRequest) (*model.Material, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID)

	var created *model.Material
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 同一文の重複チェック
		exists, err := s.matRepo.CheckSentenceExists(ctx, tx, userID, req.Sentence)
		if err != nil {
			logger.Error("Error checking sentence existence in transaction", "error", err)
			return model.ErrInternalServer
		}
		if exists {
			return model.NewAppError("CONFLICT", "同じ文の教材が既に存在します。", "sentence", model.ErrConflict)
		}

		// 2. 未学習状態で作成。前処理はこの時点では未実行 (pending)。
		material := &model.Material{
			MaterialID:       uuid.New(),
			UserID:           userID,
			Sentence:         req.Sentence,
			Level:            req.Level,
			Tags:             normalizeTags(req.Tags),
			Status:           model.MaterialStatusUnlearned,
			ReviewCount:      0,
			PreprocessStatus: model.PreprocessStatusPending,
		}
		if err := s.matRepo.Create(ctx, tx, material); err != nil {
			logger.Error("Error creating material in transaction", "error", err)
			return model.ErrInternalServer
		}
		created = material
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Material created", "material_id", created.MaterialID, "level", created.Level)
	return created, nil
}

func (s *materialService) GetMaterial(ctx context.Context, userID, materialID uuid.UUID) (*model.Material, error) {
	return s.matRepo.FindByID(ctx, s.db, userID, materialID)
}

func (s *materialService) ListMaterials(ctx context.Context, userID uuid.UUID, query model.ListMaterialsQuery) ([]*model.Material, error) {
	return s.matRepo.List(ctx, s.db, userID, query)
}

func (s *materialService) DeleteMaterial(ctx context.Context, userID, materialID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("user_id", userID, "material_id", materialID)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.matRepo.Delete(ctx, tx, userID, materialID)
	})
	if err != nil {
		return err
	}
	logger.Info("Material deleted")
	return nil
}

func (s *materialService) ApplyPreprocessResult(ctx context.Context, userID, materialID uuid.UUID, req *model.PreprocessResultRequest) error {
	logger := middleware.GetLogger(ctx).With("user_id", userID, "material_id", materialID)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.matRepo.UpdatePreprocess(ctx, tx, userID, materialID, req)
	})
	if err != nil {
		return err
	}
	logger.Info("Preprocess result applied", "status", req.Status)
	return nil
}
