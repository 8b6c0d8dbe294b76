// internal/handlers/audit_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_shadowing_keep/internal/service"
	"go_shadowing_keep/internal/webutil"
)

// AuditHandler はデータ整合性監査のエンドポイントです。読み取り専用。
type AuditHandler struct {
	service service.AuditService
	logger  *slog.Logger
}

func NewAuditHandler(service service.AuditService, logger *slog.Logger) *AuditHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditHandler{
		service: service,
		logger:  logger,
	}
}

// RunAudit は全チェックを実行し、違反の要約レポートを返します
func (h *AuditHandler) RunAudit(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "RunAudit"))

	report, err := h.service.RunAudit(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, report)
}
