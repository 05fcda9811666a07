package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"tone-analyzer/internal/app"
	"tone-analyzer/internal/httputil"
	"tone-analyzer/internal/llm"
	"tone-analyzer/internal/tone"
)

type analyzeRequest struct {
	Text string `json:"text" validate:"required"`
}

type batchRequest struct {
	Texts []string `json:"texts" validate:"required,min=1"`
}

type batchItem struct {
	Index  int          `json:"index"`
	Result *tone.Result `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

func main() {
	deps, err := app.Build(os.Stdout)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	r := newRouter(deps)
	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("tone analysis service listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server error", "err", err)
	}
}

func newRouter(deps app.Deps) http.Handler {
	// A batch runs sequentially, so allow one request timeout per item.
	timeout := time.Duration(max(deps.Config.MaxBatchSize, 1)) * max(deps.Config.RequestTimeout, time.Second)
	r := httputil.NewRouter(deps.Log, timeout)
	r.Post("/api/analyze", analyzeHandler(deps))
	r.Post("/api/analyze/batch", batchHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	return r
}

func analyzeHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		result, err := deps.Analyzer.Analyze(r.Context(), req.Text)
		if err != nil {
			writeAnalysisError(deps.Log, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)
	}
}

func batchHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		if limit := deps.Config.MaxBatchSize; limit > 0 && len(req.Texts) > limit {
			httputil.Fail(deps.Log, w, fmt.Sprintf("too many texts (max %d)", limit), nil, http.StatusBadRequest)
			return
		}

		outcomes := deps.Analyzer.AnalyzeEach(r.Context(), req.Texts)
		items := make([]batchItem, len(outcomes))
		for i, o := range outcomes {
			items[i] = batchItem{Index: o.Index}
			if o.Err != nil {
				items[i].Error = o.Err.Error()
				continue
			}
			res := o.Result
			items[i].Result = &res
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"results": items})
	}
}

// writeAnalysisError maps pipeline failures to HTTP status codes.
func writeAnalysisError(log *slog.Logger, w http.ResponseWriter, err error) {
	var perr *tone.ParseError
	var terr *llm.TransportError
	switch {
	case errors.Is(err, tone.ErrEmptyInput):
		httputil.Fail(log, w, "text cannot be empty", err, http.StatusBadRequest)
	case errors.As(err, &perr):
		log.Warn("model reply rejected", "err", err)
		httputil.WriteJSON(w, http.StatusBadGateway, httputil.ErrorBody{
			Error:   "model reply did not match the result schema",
			Details: perr.Fields,
		})
	case errors.As(err, &terr):
		httputil.Fail(log, w, "completion service unavailable", err, http.StatusServiceUnavailable)
	default:
		httputil.Fail(log, w, "analysis failed", err, http.StatusInternalServerError)
	}
}
