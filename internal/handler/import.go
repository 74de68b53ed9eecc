package handler

import (
	"context"
	"log/slog"
	"maps"
	"net/http"

	"github.com/google/uuid"
	"toppharma/internal/domain/models"
	"toppharma/internal/httputil"
)

// ImportRunner is the part of the importer the HTTP surface drives.
type ImportRunner interface {
	Start(ctx context.Context, cfg models.ImportConfig) (*models.ImportHistoryEntry, error)
	Execute(ctx context.Context, entry *models.ImportHistoryEntry) error
	History(ctx context.Context, limit int) ([]models.ImportHistoryEntry, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ImportHistoryEntry, error)
}

// ImportHandler handles FMP company import requests.
//
// An import is recorded as processing and then runs in the background;
// clients poll the history endpoint for the outcome.
type ImportHandler struct {
	importer ImportRunner
	logger   *slog.Logger
}

// NewImportHandler creates a new import handler. importer is nil when FMP
// is not configured.
func NewImportHandler(importer ImportRunner, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		importer: importer,
		logger:   logger,
	}
}

type importResponse struct {
	Success bool                       `json:"success"`
	Data    *models.ImportHistoryEntry `json:"data"`
}

// StartImport validates the config, records the run and starts it.
// POST /api/import-fmp-companies
func (h *ImportHandler) StartImport(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		respondMessage(w, http.StatusInternalServerError, "Missing FMP API key")
		return
	}

	var cfg models.ImportConfig
	if err := httputil.ParseJSON(w, r, &cfg); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.importer.Start(r.Context(), cfg)
	if err != nil {
		handleError(w, err)
		return
	}

	// Snapshot before Execute starts mutating the entry
	snapshot := *entry
	snapshot.ImportedIndustries = maps.Clone(entry.ImportedIndustries)

	// The run outlives the request but keeps its database target
	ctx := context.WithoutCancel(r.Context())
	go func() {
		if err := h.importer.Execute(ctx, entry); err != nil {
			h.logger.Error("background import failed", "id", entry.ID, "error", err)
		}
	}()

	httputil.RespondJSON(w, http.StatusAccepted, importResponse{Success: true, Data: &snapshot})
}

// ListHistory returns recent import runs, newest first
// GET /api/import-history?limit=
func (h *ImportHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": []models.ImportHistoryEntry{}})
		return
	}

	entries, err := h.importer.History(r.Context(), httputil.QueryInt(r, "limit", 0))
	if err != nil {
		h.logger.Error("error fetching import history", "error", err)
		httputil.RespondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Error fetching import history",
			"details": err.Error(),
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": entries})
}

// GetHistory returns one import run
// GET /api/import-history/{id}
func (h *ImportHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r.PathValue("id"), "import ID")
	if !ok {
		return
	}
	if h.importer == nil {
		httputil.RespondError(w, http.StatusNotFound, "import not found")
		return
	}

	entry, err := h.importer.Get(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, importResponse{Success: true, Data: entry})
}
