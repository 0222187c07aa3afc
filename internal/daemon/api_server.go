package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"shelver/internal/api"
	"shelver/internal/history"
	"shelver/internal/logging"
	"shelver/internal/services"
)

// maxRequestBytes bounds request bodies; plans for very large batches still
// fit comfortably.
const maxRequestBytes = 16 << 20

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type apiHandler struct {
	svc    *api.PlanService
	logger *slog.Logger
}

// NewRouter builds the HTTP handler for the planning API.
func NewRouter(svc *api.PlanService, token string, logger *slog.Logger) http.Handler {
	logger = logging.NewComponentLogger(logger, "api-server")
	h := &apiHandler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestContext)
	r.Use(loggingMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Route("/v1", func(r chi.Router) {
		r.Use(authMiddleware(token))
		r.Post("/plan", h.plan)
		r.Post("/execute", h.execute)
		r.Get("/history", h.listHistory)
		r.Get("/history/{id}", h.getHistory)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found", Code: "not_found"}, logger)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed", Code: "method_not_allowed"}, logger)
	})
	return r
}

func (h *apiHandler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

func (h *apiHandler) plan(w http.ResponseWriter, r *http.Request) {
	var req api.PlanRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.svc.Plan(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result, h.logger)
}

func (h *apiHandler) execute(w http.ResponseWriter, r *http.Request) {
	var req api.ExecuteRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.svc.Execute(r.Context(), req)
	if result == nil {
		h.writeError(w, r, err)
		return
	}
	// A report exists even when some actions failed; return it with the
	// status of the failure.
	writeJSON(w, api.HTTPStatus(err), result, h.logger)
}

func (h *apiHandler) listHistory(w http.ResponseWriter, r *http.Request) {
	opts := history.ListOptions{Limit: 50}
	query := r.URL.Query()
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(w, r, fmt.Errorf("%w: invalid limit %q", api.ErrBadRequest, raw))
			return
		}
		opts.Limit = limit
	}
	opts.Category = strings.TrimSpace(query.Get("category"))
	if raw := query.Get("failed"); raw != "" {
		failed, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: invalid failed flag %q", api.ErrBadRequest, raw))
			return
		}
		opts.FailedOnly = failed
	}
	runs, err := h.svc.History(r.Context(), opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs}, h.logger)
}

func (h *apiHandler) getHistory(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run, h.logger)
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty request body", api.ErrBadRequest)
		}
		return fmt.Errorf("%w: %v", api.ErrBadRequest, err)
	}
	return nil
}

func (h *apiHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := api.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.WithContext(r.Context(), h.logger).Error("request failed",
			logging.String("path", r.URL.Path),
			logging.String("stage", services.StageOf(err)),
			logging.Error(err),
		)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: api.ErrorCode(err)}, h.logger)
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", logging.Error(err))
	}
}
