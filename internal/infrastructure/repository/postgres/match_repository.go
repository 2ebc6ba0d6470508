package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/offmue/pickem/internal/domain/match"
	qb "github.com/offmue/pickem/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := matchBaseSelectBuilder().
		Where(qb.Eq("id", matchID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}

	return matchFromRow(row), true, nil
}

func (r *MatchRepository) ListByWeek(ctx context.Context, week int) ([]match.Match, error) {
	query, args, err := matchBaseSelectBuilder().
		Where(qb.Eq("week", week)).
		OrderBy("start_time", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches by week query: %w", err)
	}

	return r.selectMatches(ctx, query, args)
}

func (r *MatchRepository) ListAll(ctx context.Context) ([]match.Match, error) {
	query, args, err := matchBaseSelectBuilder().
		OrderBy("week", "start_time", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	return r.selectMatches(ctx, query, args)
}

func (r *MatchRepository) Upsert(ctx context.Context, m match.Match) error {
	insertModel := struct {
		ID           string         `db:"id"`
		Week         int            `db:"week"`
		HomeTeamID   string         `db:"home_team_id"`
		AwayTeamID   string         `db:"away_team_id"`
		StartTime    time.Time      `db:"start_time"`
		IsCompleted  bool           `db:"is_completed"`
		WinnerTeamID sql.NullString `db:"winner_team_id"`
		HomeScore    sql.NullInt64  `db:"home_score"`
		AwayScore    sql.NullInt64  `db:"away_score"`
	}{
		ID:           m.ID,
		Week:         m.Week,
		HomeTeamID:   m.HomeTeamID,
		AwayTeamID:   m.AwayTeamID,
		StartTime:    m.StartTime.UTC(),
		IsCompleted:  m.IsCompleted,
		WinnerTeamID: sql.NullString{String: m.WinnerTeamID, Valid: m.WinnerTeamID != ""},
		HomeScore:    intPtrToNullInt64(m.HomeScore),
		AwayScore:    intPtrToNullInt64(m.AwayScore),
	}

	query, args, err := qb.InsertModel("matches", insertModel, `ON CONFLICT (id)
DO UPDATE SET
    week = EXCLUDED.week,
    home_team_id = EXCLUDED.home_team_id,
    away_team_id = EXCLUDED.away_team_id,
    start_time = EXCLUDED.start_time,
    is_completed = EXCLUDED.is_completed,
    winner_team_id = EXCLUDED.winner_team_id,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build match upsert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}
	return nil
}

func (r *MatchRepository) selectMatches(ctx context.Context, query string, args []any) ([]match.Match, error) {
	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func matchBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("matches")
}
