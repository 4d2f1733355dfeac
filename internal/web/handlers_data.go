package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/csvtable/internal/core"
	"github.com/JonMunkholm/csvtable/internal/logging"
	"github.com/JonMunkholm/csvtable/internal/web/middleware"
)

// DataResponse is the Data Endpoint success body.
type DataResponse struct {
	Data []core.Record `json:"data"`
}

// HistoryResponse lists recent fetches, newest first.
type HistoryResponse struct {
	Data []core.FetchRecord `json:"data"`
}

// HealthResponse reports liveness and fetch slot usage.
type HealthResponse struct {
	Status  string             `json:"status"`
	Fetches core.LimiterStatus `json:"fetches"`
}

// handleData serves GET /api/data. Every call fetches and decodes the
// object again.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.FetchTable(withClient(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	records := res.Records
	if records == nil {
		records = []core.Record{}
	}

	logging.FromContext(r.Context()).Debug("serving table", "fetch_id", res.ID, "rows", len(records))
	middleware.WriteJSON(w, http.StatusOK, DataResponse{Data: records})
}

// handleHistory serves GET /api/history?limit=N.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Database.HistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			middleware.WriteError(w, http.StatusBadRequest, "limit must be a positive integer", "REQ003")
			return
		}
		if limit <= 0 || n < limit {
			limit = n
		}
	}

	recs, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("history query failed", "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, "fetch history unavailable", "HIST001")
		return
	}
	if recs == nil {
		recs = []core.FetchRecord{}
	}
	middleware.WriteJSON(w, http.StatusOK, HistoryResponse{Data: recs})
}

// handleHealth serves GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Fetches: s.service.Limiter().Status(),
	})
}
