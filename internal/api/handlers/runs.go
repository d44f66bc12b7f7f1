package handlers

import (
	"errors"
	"net/http"

	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/pkg/logger"
)

const defaultRunLimit = 20

// RunsHandler serves the calibration run history
type RunsHandler struct {
	store  contracts.TableReader
	logger *logger.Logger
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(store contracts.TableReader, log *logger.Logger) *RunsHandler {
	return &RunsHandler{
		store:  store,
		logger: log,
	}
}

// List returns the most recent runs, newest first
// GET /api/runs?limit=20
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", defaultRunLimit)
	if !ok || limit == 0 {
		respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	runs, err := h.store.Read(r.Context(), contracts.TableRuns)
	if errors.Is(err, contracts.ErrTableNotFound) {
		respondJSON(w, http.StatusOK, []map[string]interface{}{})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to read run history")
		respondError(w, http.StatusInternalServerError, "Failed to read run history")
		return
	}

	respondJSON(w, http.StatusOK, latestRows(runs, limit))
}

// latestRows returns up to limit rows as objects keyed by column, last row first
func latestRows(t *contracts.Table, limit int) []map[string]interface{} {
	names := t.ColumnNames()
	out := make([]map[string]interface{}, 0, limit)
	for i := t.Len() - 1; i >= 0 && len(out) < limit; i-- {
		values := contracts.EncodeRow(t.Rows[i])
		obj := make(map[string]interface{}, len(names))
		for j, name := range names {
			obj[name] = values[j]
		}
		out = append(out, obj)
	}
	return out
}
