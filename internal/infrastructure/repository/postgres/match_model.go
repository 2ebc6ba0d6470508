package postgres

import (
	"database/sql"
	"time"

	"github.com/offmue/pickem/internal/domain/match"
)

type matchTableModel struct {
	ID           string         `db:"id"`
	Week         int            `db:"week"`
	HomeTeamID   string         `db:"home_team_id"`
	AwayTeamID   string         `db:"away_team_id"`
	StartTime    time.Time      `db:"start_time"`
	IsCompleted  bool           `db:"is_completed"`
	WinnerTeamID sql.NullString `db:"winner_team_id"`
	HomeScore    sql.NullInt64  `db:"home_score"`
	AwayScore    sql.NullInt64  `db:"away_score"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:           row.ID,
		Week:         row.Week,
		HomeTeamID:   row.HomeTeamID,
		AwayTeamID:   row.AwayTeamID,
		StartTime:    row.StartTime,
		IsCompleted:  row.IsCompleted,
		WinnerTeamID: row.WinnerTeamID.String,
		HomeScore:    nullInt64ToIntPtr(row.HomeScore),
		AwayScore:    nullInt64ToIntPtr(row.AwayScore),
	}
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func intPtrToNullInt64(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
