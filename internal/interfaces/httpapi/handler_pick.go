package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/offmue/pickem/internal/domain/pick"
	"github.com/offmue/pickem/internal/usecase"
)

type submitPickRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	MatchID string `json:"match_id" validate:"required"`
	TeamID  string `json:"team_id" validate:"required"`
}

type pickDTO struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	MatchID      string `json:"matchId"`
	Week         int    `json:"week"`
	ChosenTeamID string `json:"chosenTeamId"`
	IsCorrect    *bool  `json:"isCorrect,omitempty"`
	CreatedAtUTC string `json:"createdAtUtc"`
	UpdatedAtUTC string `json:"updatedAtUtc"`
}

type submitPickResponseDTO struct {
	Pick        pickDTO `json:"pick"`
	PriorTeamID string  `json:"priorTeamId,omitempty"`
}

type teamRefDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	LogoURL      string `json:"logoUrl,omitempty"`
}

type teamUsageSlotDTO struct {
	Team  teamRefDTO `json:"team"`
	Count int        `json:"count"`
}

type teamUsageDTO struct {
	WinnerSlots []teamUsageSlotDTO `json:"winnerSlots"`
	LoserSlots  []teamUsageSlotDTO `json:"loserSlots"`
}

type teamAvailabilityDTO struct {
	Team            teamRefDTO `json:"team"`
	WinnerUsage     int        `json:"winnerUsage"`
	LoserUsage      int        `json:"loserUsage"`
	CanPickAsWinner bool       `json:"canPickAsWinner"`
	CanPickAsLoser  bool       `json:"canPickAsLoser"`
	PlaysThisWeek   bool       `json:"playsThisWeek"`
	Available       bool       `json:"available"`
}

func (h *Handler) SubmitPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPick")
	defer span.End()

	var req submitPickRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.pickService.SubmitPick(ctx, usecase.SubmitPickInput{
		UserID:  req.UserID,
		MatchID: req.MatchID,
		TeamID:  req.TeamID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit pick failed", "user_id", req.UserID, "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, submitPickResponseDTO{
		Pick:        pickToDTO(ctx, result.Pick),
		PriorTeamID: result.PriorTeamID,
	})
}

func (h *Handler) GetActivePick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActivePick")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	week, err := parseWeekPathValue(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, exists, err := h.pickService.GetActivePick(ctx, userID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "get active pick failed", "user_id", userID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeSuccess(ctx, w, http.StatusOK, nil)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pickToDTO(ctx, item))
}

func (h *Handler) GetTeamUsage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamUsage")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	item, err := h.pickService.GetTeamUsage(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team usage failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamUsageToDTO(ctx, item))
}

func (h *Handler) GetTeamAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamAvailability")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	week, err := parseWeekPathValue(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.pickService.GetTeamAvailability(ctx, userID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "get team availability failed", "user_id", userID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	dtos := make([]teamAvailabilityDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, teamAvailabilityDTO{
			Team: teamRefDTO{
				ID:           item.Team.ID,
				Name:         item.Team.Name,
				Abbreviation: item.Team.Abbreviation,
				LogoURL:      item.Team.LogoURL,
			},
			WinnerUsage:     item.WinnerUsage,
			LoserUsage:      item.LoserUsage,
			CanPickAsWinner: item.CanPickAsWinner,
			CanPickAsLoser:  item.CanPickAsLoser,
			PlaysThisWeek:   item.PlaysThisWeek,
			Available:       item.Available,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, dtos)
}

func pickToDTO(ctx context.Context, v pick.Pick) pickDTO {
	ctx, span := startSpan(ctx, "httpapi.pickToDTO")
	defer span.End()

	return pickDTO{
		ID:           v.ID,
		UserID:       v.UserID,
		MatchID:      v.MatchID,
		Week:         v.Week,
		ChosenTeamID: v.ChosenTeamID,
		IsCorrect:    v.IsCorrect,
		CreatedAtUTC: v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtUTC: v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func teamUsageToDTO(ctx context.Context, v usecase.TeamUsage) teamUsageDTO {
	ctx, span := startSpan(ctx, "httpapi.teamUsageToDTO")
	defer span.End()

	winners := make([]teamUsageSlotDTO, 0, len(v.WinnerSlots))
	for _, slot := range v.WinnerSlots {
		winners = append(winners, teamUsageSlotDTO{
			Team: teamRefDTO{
				ID:           slot.Team.ID,
				Name:         slot.Team.Name,
				Abbreviation: slot.Team.Abbreviation,
				LogoURL:      slot.Team.LogoURL,
			},
			Count: slot.Count,
		})
	}

	losers := make([]teamUsageSlotDTO, 0, len(v.LoserSlots))
	for _, slot := range v.LoserSlots {
		losers = append(losers, teamUsageSlotDTO{
			Team: teamRefDTO{
				ID:           slot.Team.ID,
				Name:         slot.Team.Name,
				Abbreviation: slot.Team.Abbreviation,
				LogoURL:      slot.Team.LogoURL,
			},
			Count: slot.Count,
		})
	}

	return teamUsageDTO{WinnerSlots: winners, LoserSlots: losers}
}
