package httpapi

import (
	"net/http"
	"strings"
)

type leaderboardEntryDTO struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

type userScoreDTO struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	entries, err := h.scoringService.Leaderboard(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, leaderboardEntryDTO{
			UserID:   entry.UserID,
			Username: entry.Username,
			Score:    entry.Score,
			Rank:     entry.Rank,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetUserScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserScore")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	score, err := h.scoringService.UserScore(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user score failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userScoreDTO{UserID: userID, Score: score})
}
