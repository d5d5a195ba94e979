// Package api serves the SSL feature catalogue over HTTP as JSON.
package api

import (
	"database/sql"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/echomask/internal/db"
	"github.com/banshee-data/echomask/internal/monitoring"
	"github.com/banshee-data/echomask/internal/ssl"
)

var logf = monitoring.Component("api")

const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// Server exposes a FeatureStore.
type Server struct {
	store *db.FeatureStore
}

// NewServer returns a Server reading from and deleting in store.
func NewServer(store *db.FeatureStore) *Server {
	return &Server{store: store}
}

// FeatureAPI is the wire form of ssl.Feature. Sv statistics are null when
// the feature has no valid pixels.
type FeatureAPI struct {
	ID           int      `json:"id"`
	PixelCount   int      `json:"pixel_count"`
	ValidCount   int      `json:"valid_count"`
	FirstPing    int      `json:"first_ping"`
	LastPing     int      `json:"last_ping"`
	PingCount    int      `json:"ping_count"`
	TopSample    int      `json:"top_sample"`
	BottomSample int      `json:"bottom_sample"`
	MedianSv     *float64 `json:"median_sv"`
	MeanSv       *float64 `json:"mean_sv"`
	MinSv        *float64 `json:"min_sv"`
	MaxSv        *float64 `json:"max_sv"`
}

func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func toFeatureAPI(f ssl.Feature) FeatureAPI {
	return FeatureAPI{
		ID:           f.ID,
		PixelCount:   f.PixelCount,
		ValidCount:   f.ValidCount,
		FirstPing:    f.FirstPing,
		LastPing:     f.LastPing,
		PingCount:    f.PingCount,
		TopSample:    f.TopSample,
		BottomSample: f.BottomSample,
		MedianSv:     optional(f.MedianSv),
		MeanSv:       optional(f.MeanSv),
		MinSv:        optional(f.MinSv),
		MaxSv:        optional(f.MaxSv),
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		logf("[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the catalogue routes:
//
//	GET    /api/runs
//	GET    /api/runs/{id}
//	DELETE /api/runs/{id}
//	GET    /api/runs/{id}/features
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/runs", s.listRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.getRun)
	mux.HandleFunc("DELETE /api/runs/{id}", s.deleteRun)
	mux.HandleFunc("GET /api/runs/{id}/features", s.listFeatures)
	return mux
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns()
	if err != nil {
		logf("list runs: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []*db.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) {
		writeJSONError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		logf("get run: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to get run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteRun(r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) {
		writeJSONError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		logf("delete run: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to delete run")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listFeatures(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.store.GetRun(id); errors.Is(err, sql.ErrNoRows) {
		writeJSONError(w, http.StatusNotFound, "run not found")
		return
	} else if err != nil {
		logf("get run: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to get run")
		return
	}
	features, err := s.store.ListFeatures(id)
	if err != nil {
		logf("list features: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list features")
		return
	}
	out := make([]FeatureAPI, 0, len(features))
	for _, f := range features {
		out = append(out, toFeatureAPI(f))
	}
	writeJSON(w, http.StatusOK, out)
}
