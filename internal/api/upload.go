package api

import (
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyeonlab/adlens/internal/ingest"
	"github.com/hyeonlab/adlens/internal/middleware"
	"github.com/hyeonlab/adlens/internal/models"
)

// maxCSVUpload caps keyword export uploads at 20MB.
const maxCSVUpload = 20 << 20

type uploadResponse struct {
	RowsParsed   int `json:"rows_parsed"`
	RowsUpserted int `json:"rows_upserted"`
}

// SearchCSVUploadHandler serves POST /api/uploads/search-csv. The body is
// either a multipart form with a "file" field or the raw CSV itself.
func (s *Server) SearchCSVUploadHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "uploads_search_csv"
	log := middleware.LoggerFromRequest(r, s.Logger)

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		s.finish(endpoint, "POST", "400", start)
		http.Error(w, "client_id is required", http.StatusBadRequest)
		return
	}

	body, err := s.csvBody(w, r)
	if err != nil {
		s.finish(endpoint, "POST", "400", start)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer func() {
		_ = body.Close()
	}()

	rows, err := ingest.ParseSearchCSV(body, clientID)
	if err != nil {
		log.Warn("csv upload rejected", zap.Error(err), zap.String("client_id", clientID))
		s.finish(endpoint, "POST", "400", start)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n, err := s.Writer.UpsertSearchFacts(r.Context(), rows)
	if err != nil {
		log.Error("csv upsert failed", zap.Error(err), zap.String("client_id", clientID))
		s.finish(endpoint, "POST", "500", start)
		http.Error(w, "store failed", http.StatusInternalServerError)
		return
	}

	s.Metrics.IncrementIngestRuns(string(models.SourceLocalSearch), "ok")
	s.Metrics.AddIngestRowsUpserted(string(models.SourceLocalSearch), n)
	log.Info("csv upload ingested", zap.String("client_id", clientID), zap.Int("rows", n))
	s.finish(endpoint, "POST", "200", start)
	s.writeJSON(w, http.StatusOK, uploadResponse{RowsParsed: len(rows), RowsUpserted: n})
}

// csvBody picks the upload out of the request, handling both multipart and
// raw bodies.
func (s *Server) csvBody(w http.ResponseWriter, r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCSVUpload)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return r.Body, nil
}
