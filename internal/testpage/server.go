// Package testpage serves a click-counter page for measuring the clicker and
// a small API that records and summarizes the runs it reports.
package testpage

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aayushbajaj/clakr/internal/storage"
	"github.com/aayushbajaj/clakr/pkg/stats"
)

//go:embed index.html
var indexHTML []byte

const DefaultAddr = "127.0.0.1:8421"

// RunStore persists test runs.
type RunStore interface {
	RecordRun(run storage.TestRun) (storage.TestRun, error)
	Runs(limit int) ([]storage.TestRun, error)
	DeleteRuns() error
}

// Expectation is the rate and run length a flawless clicker achieves.
type Expectation struct {
	Rate     float64
	Duration time.Duration
}

// ExpectationFunc supplies the default expectation for /api/summary.
type ExpectationFunc func() Expectation

type handler struct {
	store    RunStore
	expected ExpectationFunc
	logger   *slog.Logger
	now      func() time.Time
}

// NewRouter creates the Chi router with the page and API routes.
func NewRouter(store RunStore, expected ExpectationFunc, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if expected == nil {
		expected = func() Expectation { return Expectation{} }
	}
	h := &handler{store: store, expected: expected, logger: logger, now: time.Now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLog(logger))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Get("/health", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/runs", h.recordRun)
		r.Get("/runs", h.listRuns)
		r.Delete("/runs", h.deleteRuns)
		r.Get("/summary", h.summary)
	})
	return r
}

// Serve runs the server on addr until ctx is canceled. ready, if non-nil,
// receives the bound address once listening.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger, ready func(addr string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	logger.Info("test page listening", "addr", ln.Addr().String())
	if ready != nil {
		ready(ln.Addr().String())
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type runRequest struct {
	Clicks     int64  `json:"clicks"`
	DurationMs int64  `json:"durationMs"`
	Source     string `json:"source"`
}

type runResponse struct {
	ID         string    `json:"id"`
	RecordedAt time.Time `json:"recordedAt"`
	Clicks     int64     `json:"clicks"`
	DurationMs int64     `json:"durationMs"`
	Rate       float64   `json:"rate"`
	Source     string    `json:"source,omitempty"`
}

func newRunResponse(run storage.TestRun) runResponse {
	return runResponse{
		ID:         run.ID,
		RecordedAt: run.RecordedAt,
		Clicks:     run.Clicks,
		DurationMs: run.Duration.Milliseconds(),
		Rate:       stats.AchievedRate(run.Clicks, run.Duration),
		Source:     run.Source,
	}
}

// recordRun handles POST /api/runs
func (h *handler) recordRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Clicks < 0 {
		writeError(w, http.StatusBadRequest, "clicks must not be negative")
		return
	}
	if req.DurationMs <= 0 {
		writeError(w, http.StatusBadRequest, "durationMs must be positive")
		return
	}

	run, err := h.store.RecordRun(storage.TestRun{
		RecordedAt: h.now(),
		Clicks:     req.Clicks,
		Duration:   time.Duration(req.DurationMs) * time.Millisecond,
		Source:     req.Source,
	})
	if err != nil {
		h.logger.Error("failed to record run", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record run")
		return
	}
	h.logger.Info("test run recorded", "id", run.ID, "clicks", run.Clicks, "duration", run.Duration)
	writeJSON(w, http.StatusCreated, newRunResponse(run))
}

// listRuns handles GET /api/runs
func (h *handler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	runs, err := h.store.Runs(limit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	out := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, newRunResponse(run))
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": out})
}

// deleteRuns handles DELETE /api/runs
func (h *handler) deleteRuns(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteRuns(); err != nil {
		h.logger.Error("failed to delete runs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete runs")
		return
	}
	h.logger.Info("test runs cleared")
	w.WriteHeader(http.StatusNoContent)
}

type summaryResponse struct {
	Runs         int     `json:"runs"`
	Total        int64   `json:"total"`
	Best         int64   `json:"best"`
	Lowest       int64   `json:"lowest"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	StdDev       float64 `json:"stdDev"`
	P10          float64 `json:"p10"`
	P90          float64 `json:"p90"`
	ErrorMargin  float64 `json:"errorMarginPct"`
	ExpectedRate float64 `json:"expectedRate"`
	DurationMs   int64   `json:"durationMs"`
	Perfect      int64   `json:"perfect"`
	PerfectCount int     `json:"perfectCount"`
	PerfectRate  float64 `json:"perfectRate"`
	Outliers     []int64 `json:"outliers"`
}

// summary handles GET /api/summary. rate and durationMs override the
// configured expectation.
func (h *handler) summary(w http.ResponseWriter, r *http.Request) {
	exp := h.expected()
	if v := r.URL.Query().Get("rate"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate < 0 {
			writeError(w, http.StatusBadRequest, "rate must be a non-negative number")
			return
		}
		exp.Rate = rate
	}
	durationMs, err := queryInt(r, "durationMs", int(exp.Duration.Milliseconds()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exp.Duration = time.Duration(durationMs) * time.Millisecond

	runs, err := h.store.Runs(0)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	samples := make([]int64, len(runs))
	for i, run := range runs {
		samples[i] = run.Clicks
	}

	s := stats.Summarize(samples, stats.PerfectClicks(exp.Rate, exp.Duration))
	outliers := s.Outliers
	if outliers == nil {
		outliers = []int64{}
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Runs:         s.Count,
		Total:        s.Total,
		Best:         s.Best,
		Lowest:       s.Lowest,
		Mean:         s.Mean,
		Median:       s.Median,
		StdDev:       s.StdDev,
		P10:          s.P10,
		P90:          s.P90,
		ErrorMargin:  s.ErrorMargin,
		ExpectedRate: exp.Rate,
		DurationMs:   exp.Duration.Milliseconds(),
		Perfect:      s.Perfect,
		PerfectCount: s.PerfectCount,
		PerfectRate:  s.PerfectRate(),
		Outliers:     outliers,
	})
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

const maxBodyBytes = 1 << 16

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
