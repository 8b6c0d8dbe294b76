// internal/handlers/material_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"go_shadowing_keep/internal/middleware"
	"go_shadowing_keep/internal/model"
	"go_shadowing_keep/internal/service"
	"go_shadowing_keep/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type MaterialHandler struct {
	service service.MaterialService
	logger  *slog.Logger
}

func NewMaterialHandler(s service.MaterialService, logger *slog.Logger) *MaterialHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MaterialHandler{
		service: s,
		logger:  logger,
	}
}

// PostMaterial は新しい教材を作成するためのハンドラ
func (h *MaterialHandler) PostMaterial(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostMaterial"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden))
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	var req model.CreateMaterialRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput))
		return
	}

	if !validateRequest(w, logger, req) {
		return
	}

	material, err := h.service.CreateMaterial(r.Context(), userID, &req)
	if err != nil {
		logger.Error("Error creating material in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Material created successfully", slog.String("material_id", material.MaterialID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, material)
}

// GetMaterials は教材一覧を返すハンドラ (status / level でフィルタ可能)
func (h *MaterialHandler) GetMaterials(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetMaterials"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden))
		return
	}

	var query model.ListMaterialsQuery
	if sv := r.URL.Query().Get("status"); sv != "" {
		status := model.MaterialStatus(sv)
		switch status {
		case model.MaterialStatusUnlearned, model.MaterialStatusLearning, model.MaterialStatusMastered:
			query.Status = &status
		default:
			webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "statusの値が不正です。", "status", model.ErrInvalidInput))
			return
		}
	}
	if lv := r.URL.Query().Get("level"); lv != "" {
		level, err := strconv.Atoi(lv)
		if err != nil || level < 1 || level > 5 {
			webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "levelの値が不正です。", "level", model.ErrInvalidInput))
			return
		}
		query.Level = &level
	}

	materials, err := h.service.ListMaterials(r.Context(), userID, query)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if materials == nil {
		materials = []*model.Material{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, materials)
}

// GetMaterial は単一教材を返すハンドラ
func (h *MaterialHandler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetMaterial"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden))
		return
	}

	materialID, err := uuid.Parse(chi.URLParam(r, "material_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "教材IDの形式が正しくありません。", "material_id", model.ErrInvalidInput))
		return
	}

	material, err := h.service.GetMaterial(r.Context(), userID, materialID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, material)
}

// DeleteMaterial は教材の論理削除
func (h *MaterialHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteMaterial"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden))
		return
	}

	materialID, err := uuid.Parse(chi.URLParam(r, "material_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "教材IDの形式が正しくありません。", "material_id", model.ErrInvalidInput))
		return
	}

	if err := h.service.DeleteMaterial(r.Context(), userID, materialID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutPreprocessResult は前処理パイプラインの結果書き戻し用ハンドラ
func (h *MaterialHandler) PutPreprocessResult(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutPreprocessResult"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden))
		return
	}

	materialID, err := uuid.Parse(chi.URLParam(r, "material_id"))
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "教材IDの形式が正しくありません。", "material_id", model.ErrInvalidInput))
		return
	}

	var req model.PreprocessResultRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput))
		return
	}
	if !validateRequest(w, logger, req) {
		return
	}

	if err := h.service.ApplyPreprocessResult(r.Context(), userID, materialID, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
