package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dataprism/domain/core"
	"dataprism/domain/profile"
	"dataprism/internal/errors"
	"dataprism/report"
)

// queryRequest is the body of POST /api/query. session_id is the dataset
// identifier, kept under its historical wire name.
type queryRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Data Analyst Agent API"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errors.InvalidInput("missing file field in multipart form"))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeError(w, errors.InvalidInput("failed to read uploaded file"))
		return
	}

	filename := header.Filename
	if filename == "" {
		filename = "unknown.csv"
	}

	p, err := s.service.Upload(r.Context(), filename, raw)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.Summary())
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("invalid request body"))
		return
	}

	datasetID, err := core.ParseID(req.SessionID)
	if err != nil {
		writeError(w, errors.InvalidInput("session_id is required"))
		return
	}

	rec, err := s.service.Query(r.Context(), datasetID, req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	datasets, err := s.service.ListDatasets(r.Context(), queryLimit(r, 100))
	if err != nil {
		writeError(w, err)
		return
	}
	if datasets == nil {
		datasets = []profile.DatasetProfile{}
	}
	writeJSON(w, http.StatusOK, datasets)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := core.ID(chi.URLParam(r, "id"))
	p, err := s.service.GetDataset(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSessionData(w http.ResponseWriter, r *http.Request) {
	id := core.ID(chi.URLParam(r, "id"))
	rows, err := s.service.SampleRows(r.Context(), id, queryLimit(r, 100))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (s *Server) handleSessionQueries(w http.ResponseWriter, r *http.Request) {
	id := core.ID(chi.URLParam(r, "id"))
	records, err := s.service.ListAnalyses(r.Context(), id, queryLimit(r, 100))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := core.ID(chi.URLParam(r, "id"))
	if err := s.service.DeleteDataset(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted"})
}

func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	queryID := core.ID(chi.URLParam(r, "queryId"))
	rec, err := s.service.GetAnalysis(r.Context(), queryID)
	if err != nil {
		writeError(w, err)
		return
	}

	// The dataset may have been deleted since; the report degrades to the
	// analysis-only sections.
	dataset, err := s.service.GetDataset(r.Context(), rec.DatasetID)
	if err != nil && !errors.Is(err, errors.CodeNotFound) {
		writeError(w, err)
		return
	}

	name := queryID.String()
	if len(name) > 8 {
		name = name[:8]
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=analysis_report_%s.pdf", name))

	if err := report.Render(w, *rec, dataset); err != nil {
		log.Printf("[API] report rendering failed: %v", err)
	}
}

func queryLimit(r *http.Request, def int) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

// writeError maps error codes to HTTP statuses. Cause chains are logged
// server-side and never leak into the response body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch errors.GetCode(err) {
	case errors.CodeUnsupportedFormat, errors.CodeParseError, errors.CodeInvalidInput:
		status = http.StatusBadRequest
		message = err.Error()
	case errors.CodeNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case errors.CodeUpstreamError:
		status = http.StatusBadGateway
		message = "analysis backend unavailable"
		log.Printf("[API] upstream failure: %v", err)
	default:
		log.Printf("[API] internal failure: %v", err)
	}

	writeJSON(w, status, map[string]string{"detail": message})
}
