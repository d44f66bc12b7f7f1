package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/pkg/logger"
)

// TablesHandler serves persisted calibration tables
// ⭐ SSOT: 결과 테이블 조회 API는 여기서만 (읽기 전용)
type TablesHandler struct {
	store  contracts.TableStore
	logger *logger.Logger
}

// NewTablesHandler creates a new tables handler
func NewTablesHandler(store contracts.TableStore, log *logger.Logger) *TablesHandler {
	return &TablesHandler{
		store:  store,
		logger: log,
	}
}

// TableListResponse is the body of GET /api/tables
type TableListResponse struct {
	Count  int                   `json:"count"`
	Tables []contracts.TableInfo `json:"tables"`
}

// TablePage is a window of rows of one table
type TablePage struct {
	Name      string             `json:"name"`
	Columns   []contracts.Column `json:"columns"`
	TotalRows int                `json:"total_rows"`
	Offset    int                `json:"offset"`
	Rows      [][]interface{}    `json:"rows"`
}

// List returns every stored table with its row count and schema
// GET /api/tables
func (h *TablesHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.store.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list tables")
		respondError(w, http.StatusInternalServerError, "Failed to list tables")
		return
	}

	respondJSON(w, http.StatusOK, TableListResponse{Count: len(infos), Tables: infos})
}

// Get returns the rows of one table
// GET /api/tables/{name}?offset=0&limit=100
func (h *TablesHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		respondError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	limit, ok := queryInt(r, "limit", 0)
	if !ok {
		respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}

	t, err := h.store.Read(r.Context(), name)
	if errors.Is(err, contracts.ErrTableNotFound) {
		respondError(w, http.StatusNotFound, "table "+name+" not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("table", name).Error("Failed to read table")
		respondError(w, http.StatusInternalServerError, "Failed to read table")
		return
	}

	respondJSON(w, http.StatusOK, page(t, offset, limit))
}

// page slices rows [offset, offset+limit); limit 0 means all remaining rows
func page(t *contracts.Table, offset, limit int) TablePage {
	p := TablePage{
		Name:      t.Name,
		Columns:   t.Columns,
		TotalRows: t.Len(),
		Offset:    offset,
		Rows:      [][]interface{}{},
	}
	if offset >= t.Len() {
		return p
	}
	end := t.Len()
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	for _, row := range t.Rows[offset:end] {
		p.Rows = append(p.Rows, contracts.EncodeRow(row))
	}
	return p
}
