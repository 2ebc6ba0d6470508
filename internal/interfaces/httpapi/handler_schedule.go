package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/offmue/pickem/internal/domain/match"
)

type matchDTO struct {
	ID           string `json:"id"`
	Week         int    `json:"week"`
	HomeTeamID   string `json:"homeTeamId"`
	AwayTeamID   string `json:"awayTeamId"`
	StartTimeUTC string `json:"startTimeUtc"`
	IsCompleted  bool   `json:"isCompleted"`
	WinnerTeamID string `json:"winnerTeamId,omitempty"`
	HomeScore    *int   `json:"homeScore,omitempty"`
	AwayScore    *int   `json:"awayScore,omitempty"`
}

type currentWeekDTO struct {
	Week int `json:"week"`
}

func (h *Handler) GetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentWeek")
	defer span.End()

	week, err := h.scheduleService.CurrentWeek(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get current week failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, currentWeekDTO{Week: week})
}

func (h *Handler) ListWeekMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeekMatches")
	defer span.End()

	week, err := parseWeekPathValue(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matches, err := h.scheduleService.WeekMatches(ctx, week)
	if err != nil {
		h.logger.WarnContext(ctx, "list week matches failed", "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		items = append(items, matchToDTO(ctx, m))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func matchToDTO(ctx context.Context, v match.Match) matchDTO {
	ctx, span := startSpan(ctx, "httpapi.matchToDTO")
	defer span.End()

	return matchDTO{
		ID:           v.ID,
		Week:         v.Week,
		HomeTeamID:   v.HomeTeamID,
		AwayTeamID:   v.AwayTeamID,
		StartTimeUTC: v.StartTime.UTC().Format(time.RFC3339),
		IsCompleted:  v.IsCompleted,
		WinnerTeamID: v.WinnerTeamID,
		HomeScore:    v.HomeScore,
		AwayScore:    v.AwayScore,
	}
}
