package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/KaramelBytes/medcombo/internal/cache"
	"github.com/KaramelBytes/medcombo/internal/chart"
	"github.com/KaramelBytes/medcombo/internal/combo"
	"github.com/KaramelBytes/medcombo/internal/dataset"
	"github.com/KaramelBytes/medcombo/internal/logging"
	"github.com/KaramelBytes/medcombo/internal/report"
	"github.com/gorilla/mux"
)

// Handler provides the dashboard API endpoints.
type Handler struct {
	ds      *dataset.Dataset
	results *cache.Results
	sel     Selection
	version string
	log     *slog.Logger
}

// NewHandler creates a handler over an immutable dataset. Results are served through the given memo.
func NewHandler(ds *dataset.Dataset, results *cache.Results, sel Selection, version string) *Handler {
	if sel.Outcome == "" {
		sel.Outcome = ds.OutcomeColumn()
	}
	return &Handler{
		ds:      ds,
		results: results,
		sel:     sel,
		version: version,
		log:     logging.New("api"),
	}
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/info", h.handleInfo).Methods("GET")

	r.HandleFunc("/columns", h.handleColumns).Methods("GET")
	r.HandleFunc("/usage/{column}", h.handleUsage).Methods("GET")
	r.HandleFunc("/compute", h.handleCompute).Methods("GET")

	r.HandleFunc("/chart/usage/{column}.png", h.handleUsageChart).Methods("GET")
	r.HandleFunc("/chart/outcome.png", h.handleOutcomeChart).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		slog.Error("encode response", "err", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var selErr *SelectionError
	switch {
	case errors.As(err, &selErr), errors.Is(err, combo.ErrInvalidColumn):
		return http.StatusBadRequest
	case errors.Is(err, combo.ErrEmptySelection), errors.Is(err, chart.ErrNoData):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		h.log.Error("request failed", "path", r.URL.Path, "request_id", w.Header().Get(requestIDHeader), "err", err)
	} else {
		h.log.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	respondError(w, status, err.Error())
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"version": h.version,
		"dataset": h.ds.Name(),
		"rows":    h.ds.Len(),
		"columns": h.ds.Columns(),
		"outcome": h.ds.OutcomeColumn(),
		"cache":   h.results.Stats(),
	}
	respondJSON(w, http.StatusOK, info)
}

func (h *Handler) handleColumns(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.sel.Present(h.ds))
}

func (h *Handler) usage(name string) (*combo.UsageDistribution, error) {
	if !h.sel.Allows(name) {
		return nil, &SelectionError{Column: name, Reason: "not a selectable medication column"}
	}
	return combo.Usage(h.ds, name)
}

func (h *Handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	u, err := h.usage(mux.Vars(r)["column"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// compute gates the pair and returns the (possibly cached) result.
func (h *Handler) compute(r *http.Request) (*combo.Result, error) {
	q := r.URL.Query()
	col1, col2 := q.Get("col1"), q.Get("col2")
	if err := h.sel.Validate(col1, col2); err != nil {
		return nil, err
	}
	return h.results.Get(col1, col2)
}

func (h *Handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	res, err := h.compute(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report.NewView(res))
}

func (h *Handler) handleUsageChart(w http.ResponseWriter, r *http.Request) {
	u, err := h.usage(mux.Vars(r)["column"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := chart.Usage(u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	width, height := chart.Size(len(u.Values))
	h.writePNG(w, r, func(buf *bytes.Buffer) error { return chart.Write(buf, p, chart.PNG, width, height) })
}

func (h *Handler) handleOutcomeChart(w http.ResponseWriter, r *http.Request) {
	res, err := h.compute(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := chart.Outcomes(res.Aggregation)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	width, height := chart.Size(len(res.Aggregation.Combinations))
	h.writePNG(w, r, func(buf *bytes.Buffer) error { return chart.Write(buf, p, chart.PNG, width, height) })
}

// writePNG renders into memory before any header is written.
func (h *Handler) writePNG(w http.ResponseWriter, r *http.Request, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
