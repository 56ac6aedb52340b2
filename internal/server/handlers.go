package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/repradar/repradar/internal/reddit"
	"github.com/repradar/repradar/internal/scanner"
	"github.com/sirupsen/logrus"
)

// maxBrandLength guards against junk submissions from the public form.
const maxBrandLength = 100

type scanRequest struct {
	Brand string `json:"brand"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be JSON with a brand field")
		return
	}

	brand := strings.TrimSpace(req.Brand)
	if brand == "" {
		writeError(w, http.StatusBadRequest, "Brand name is required")
		return
	}
	if len(brand) > maxBrandLength {
		writeError(w, http.StatusBadRequest, "Brand name is too long")
		return
	}

	result, err := s.scanner.Scan(r.Context(), brand)
	if err != nil {
		var reqErr *reddit.RequestError
		switch {
		case errors.Is(err, scanner.ErrNotConfigured):
			logrus.Error("Scan requested but provider API key is not configured")
			writeError(w, http.StatusServiceUnavailable, "Scanning is not available right now")
		case errors.As(err, &reqErr):
			logrus.Errorf("Scan for %q failed upstream: %v", brand, err)
			writeError(w, http.StatusBadGateway, "Could not reach Reddit. Please try again later.")
		default:
			logrus.Errorf("Scan for %q failed: %v", brand, err)
			writeError(w, http.StatusInternalServerError, "Scan failed")
		}
		return
	}

	if s.history != nil {
		if _, err := s.history.Record(result); err != nil {
			// The scan itself succeeded; losing the history row is not
			// worth failing the request over.
			logrus.Errorf("Failed to record scan for %q: %v", brand, err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 100")
			return
		}
		limit = parsed
	}

	records, err := s.history.Recent(limit)
	if err != nil {
		logrus.Errorf("Failed to list scans: %v", err)
		writeError(w, http.StatusInternalServerError, "Could not load scan history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scans": records,
		"total": len(records),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.scanner.GetMetrics()))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}
