package handler

import (
	"log/slog"
	"net/http"

	"toppharma/internal/domain/services"
	"toppharma/internal/httputil"
)

// DiagnosticsHandler serves the database connection test.
type DiagnosticsHandler struct {
	diagnostics services.DiagnosticsService
	logger      *slog.Logger
}

// NewDiagnosticsHandler creates a new diagnostics handler
func NewDiagnosticsHandler(diagnostics services.DiagnosticsService, logger *slog.Logger) *DiagnosticsHandler {
	return &DiagnosticsHandler{diagnostics: diagnostics, logger: logger}
}

// TestDBConnection reports credential presence and the result of each
// connection path for the request's database target.
// GET /api/test-db-connection
func (h *DiagnosticsHandler) TestDBConnection(w http.ResponseWriter, r *http.Request) {
	report := h.diagnostics.TestConnection(r.Context())

	status := http.StatusOK
	if !report.Success {
		status = http.StatusInternalServerError
	}
	httputil.RespondJSON(w, status, report)
}
