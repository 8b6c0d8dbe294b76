// internal/handlers/plan_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_shadowing_keep/internal/clock"
	"go_shadowing_keep/internal/middleware"
	"go_shadowing_keep/internal/model"
	"go_shadowing_keep/internal/service"
	"go_shadowing_keep/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type PlanHandler struct {
	service service.PlanService
	clock   clock.Clock
	logger  *slog.Logger
}

func NewPlanHandler(s service.PlanService, clk clock.Clock, logger *slog.Logger) *PlanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanHandler{
		service: s,
		clock:   clk,
		logger:  logger,
	}
}

// GenerateTodayPlan は当日のデイリープランを生成するハンドラ。冪等。
func (h *PlanHandler) GenerateTodayPlan(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GenerateTodayPlan"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden))
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	resp, err := h.service.Generate(r.Context(), userID, h.clock.Today())
	if err != nil {
		logger.Error("Error generating plan in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	// 既存プランあり/候補なしの場合は生成なし
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	webutil.RespondWithJSON(w, http.StatusCreated, resp)
}

// RegenerateTodayPlan は未着手プランの作り直し。着手済みなら 409 を返す。
func (h *PlanHandler) RegenerateTodayPlan(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "RegenerateTodayPlan"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden))
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	resp, err := h.service.Regenerate(r.Context(), userID, h.clock.Today())
	if err != nil {
		logger.Warn("Error regenerating plan in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	webutil.RespondWithJSON(w, http.StatusCreated, resp)
}

// GetTodayPlan は当日のプランをアイテム・教材込みで返すハンドラ
func (h *PlanHandler) GetTodayPlan(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetTodayPlan"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden))
		return
	}

	plan, err := h.service.GetPlan(r.Context(), userID, h.clock.Today())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, plan)
}

// StartPlanItem はアイテムへの着手 (pending → in_progress)
func (h *PlanHandler) StartPlanItem(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "StartPlanItem"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden))
		return
	}

	itemIDStr := chi.URLParam(r, "item_id")
	itemID, err := uuid.Parse(itemIDStr)
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_INPUT", "アイテムIDの形式が正しくありません。", "item_id", model.ErrInvalidInput))
		return
	}

	if err := h.service.StartItem(r.Context(), userID, itemID); err != nil {
		logger.Warn("Error starting plan item", slog.String("item_id", itemIDStr), slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
