package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/offmue/pickem/internal/platform/logging"
	"github.com/offmue/pickem/internal/usecase"
)

type Handler struct {
	pickService       *usecase.PickService
	scheduleService   *usecase.ScheduleService
	scoringService    *usecase.ScoringService
	resultSyncService *usecase.ResultSyncService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	pickService *usecase.PickService,
	scheduleService *usecase.ScheduleService,
	scoringService *usecase.ScoringService,
	resultSyncService *usecase.ResultSyncService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		pickService:       pickService,
		scheduleService:   scheduleService,
		scoringService:    scoringService,
		resultSyncService: resultSyncService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func parseWeekPathValue(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("week"))
	week, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: week must be a number, got %q", usecase.ErrInvalidInput, raw)
	}

	return week, nil
}
