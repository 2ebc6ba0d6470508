package postgres

import (
	"database/sql"
	"time"

	"github.com/offmue/pickem/internal/domain/pick"
)

type pickTableModel struct {
	ID           string       `db:"id"`
	UserID       string       `db:"user_id"`
	MatchID      string       `db:"match_id"`
	Week         int          `db:"week"`
	ChosenTeamID string       `db:"chosen_team_id"`
	IsCorrect    sql.NullBool `db:"is_correct"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

func pickFromRow(row pickTableModel) pick.Pick {
	p := pick.Pick{
		ID:           row.ID,
		UserID:       row.UserID,
		MatchID:      row.MatchID,
		Week:         row.Week,
		ChosenTeamID: row.ChosenTeamID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.IsCorrect.Valid {
		v := row.IsCorrect.Bool
		p.IsCorrect = &v
	}
	return p
}

func boolPtrToNullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}
