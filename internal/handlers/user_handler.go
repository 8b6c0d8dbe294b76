// internal/handlers/user_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_shadowing_keep/internal/middleware"
	"go_shadowing_keep/internal/model"
	"go_shadowing_keep/internal/repository"
	"go_shadowing_keep/internal/webutil"

	"gorm.io/gorm"
)

// UserHandler はユーザープロファイルの読み取り口です。
// ユーザー行の作成・認証は外部(認証レイヤー)の責務。
type UserHandler struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	logger   *slog.Logger
}

func NewUserHandler(db *gorm.DB, userRepo repository.UserRepository, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		db:       db,
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetMe は認証済みユーザーのプロファイル (レベル・ストリーク等) を返します
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetMe"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden))
		return
	}

	user, err := h.userRepo.FindByID(r.Context(), h.db, userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, model.UserResponse{
		UserID:            user.UserID,
		Name:              user.Name,
		Level:             user.Level,
		DailyMinutes:      user.DailyMinutes,
		StreakDays:        user.StreakDays,
		MaxStreakDays:     user.MaxStreakDays,
		TotalPracticeDays: user.TotalPracticeDays,
		LastPracticeDate:  user.LastPracticeDate,
	})
}
