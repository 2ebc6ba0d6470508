package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/offmue/pickem/internal/usecase"
)

type resultSyncJobRequest struct {
	Weeks []int `json:"weeks" validate:"omitempty,dive,gt=0"`
}

func (h *Handler) RunResultSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunResultSyncJob")
	defer span.End()

	if h.resultSyncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: result sync is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeResultSyncJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	weeks := req.Weeks
	if len(weeks) == 0 {
		current, err := h.scheduleService.CurrentWeek(ctx)
		if err != nil {
			h.logger.WarnContext(ctx, "resolve current week for result sync failed", "error", err)
			writeError(ctx, w, err)
			return
		}
		weeks = []int{current}
	}

	result, err := h.resultSyncService.SyncWeeks(ctx, weeks)
	if err != nil {
		h.logger.WarnContext(ctx, "run result sync job failed", "weeks", weeks, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func decodeResultSyncJobRequest(r *http.Request) (resultSyncJobRequest, error) {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req resultSyncJobRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return resultSyncJobRequest{}, nil
		}
		return resultSyncJobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
