// internal/handlers/practice_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_shadowing_keep/internal/clock"
	"go_shadowing_keep/internal/middleware"
	"go_shadowing_keep/internal/model"
	"go_shadowing_keep/internal/service"
	"go_shadowing_keep/internal/webutil"
)

type PracticeHandler struct {
	service service.PracticeService
	clock   clock.Clock
	logger  *slog.Logger
}

func NewPracticeHandler(s service.PracticeService, clk clock.Clock, logger *slog.Logger) *PracticeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PracticeHandler{
		service: s,
		clock:   clk,
		logger:  logger,
	}
}

// CompletePractice は練習完了トランザクションの入口。
// 同一プランアイテムへの再送は 409 (ALREADY_COMPLETED) になり、安全にリトライできる。
func (h *PracticeHandler) CompletePractice(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "CompletePractice"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden))
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	var req model.CompletePracticeRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		webutil.HandleError(w, logger, model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput))
		return
	}

	if !validateRequest(w, logger, req) {
		return
	}

	resp, err := h.service.Complete(r.Context(), userID, &req, h.clock.Today())
	if err != nil {
		logger.Warn("Error completing practice in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusCreated, resp)
}
