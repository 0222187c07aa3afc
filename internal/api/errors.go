package api

import (
	"context"
	"errors"
	"net/http"

	"shelver/internal/classify"
	"shelver/internal/executor"
	"shelver/internal/history"
	"shelver/internal/plan"
	"shelver/internal/services"
)

// ErrBadRequest marks malformed client input.
var ErrBadRequest = errors.New("bad request")

// StatusClientClosedRequest is reported when the caller cancelled the request.
const StatusClientClosedRequest = 499

// HTTPStatus maps an error from the planning pipeline to an HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest), errors.Is(err, plan.ErrEmptyBatch), errors.Is(err, plan.ErrInvalidBatch):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, executor.ErrLibraryBusy), errors.Is(err, executor.ErrActionsFailed):
		return http.StatusConflict
	case errors.Is(err, plan.ErrInvalidCategory),
		errors.Is(err, plan.ErrUnroutedCategory),
		errors.Is(err, plan.ErrInvalidPlan),
		errors.Is(err, plan.ErrOverlappingPlanPaths),
		errors.Is(err, classify.ErrNoRuleMatched):
		return http.StatusUnprocessableEntity
	case errors.Is(err, plan.ErrClassificationFailed), errors.Is(err, services.ErrExternalTool):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, services.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, services.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns a stable machine-readable code for an error.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, plan.ErrEmptyBatch):
		return "empty_batch"
	case errors.Is(err, plan.ErrInvalidBatch):
		return "invalid_batch"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, history.ErrNotFound):
		return "not_found"
	case errors.Is(err, executor.ErrLibraryBusy):
		return "library_busy"
	case errors.Is(err, executor.ErrActionsFailed):
		return "actions_failed"
	case errors.Is(err, plan.ErrInvalidCategory):
		return "invalid_category"
	case errors.Is(err, plan.ErrUnroutedCategory):
		return "unrouted_category"
	case errors.Is(err, plan.ErrOverlappingPlanPaths):
		return "overlapping_plan_paths"
	case errors.Is(err, plan.ErrInvalidPlan):
		return "invalid_plan"
	case errors.Is(err, plan.ErrClassificationFailed):
		return "classification_failed"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}
