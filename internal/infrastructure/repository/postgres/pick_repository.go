package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/offmue/pickem/internal/domain/pick"
	qb "github.com/offmue/pickem/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) GetActiveByUserWeek(ctx context.Context, userID string, week int) (pick.Pick, bool, error) {
	query, args, err := pickBaseSelectBuilder().
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("week", week),
		).
		ToSQL()
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("build get active pick query: %w", err)
	}

	var row pickTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pick.Pick{}, false, nil
		}
		return pick.Pick{}, false, fmt.Errorf("get active pick: %w", err)
	}

	return pickFromRow(row), true, nil
}

func (r *PickRepository) ListByUser(ctx context.Context, userID string) ([]pick.Pick, error) {
	query, args, err := pickBaseSelectBuilder().
		Where(qb.Eq("user_id", userID)).
		OrderBy("week", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks by user query: %w", err)
	}

	return r.selectPicks(ctx, query, args)
}

func (r *PickRepository) ListByMatch(ctx context.Context, matchID string) ([]pick.Pick, error) {
	query, args, err := pickBaseSelectBuilder().
		Where(qb.Eq("match_id", matchID)).
		OrderBy("user_id", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks by match query: %w", err)
	}

	return r.selectPicks(ctx, query, args)
}

// Upsert replaces the (user_id, week) row in one statement. The unique
// index backs the one-active-pick invariant even if two submissions slip
// past the service-level lock; the loser surfaces as pick.ErrConflict.
func (r *PickRepository) Upsert(ctx context.Context, p pick.Pick) (pick.Pick, error) {
	insertModel := struct {
		ID           string       `db:"id"`
		UserID       string       `db:"user_id"`
		MatchID      string       `db:"match_id"`
		Week         int          `db:"week"`
		ChosenTeamID string       `db:"chosen_team_id"`
		IsCorrect    sql.NullBool `db:"is_correct"`
		CreatedAt    time.Time    `db:"created_at"`
		UpdatedAt    time.Time    `db:"updated_at"`
	}{
		ID:           p.ID,
		UserID:       p.UserID,
		MatchID:      p.MatchID,
		Week:         p.Week,
		ChosenTeamID: p.ChosenTeamID,
		IsCorrect:    boolPtrToNullBool(p.IsCorrect),
		CreatedAt:    p.CreatedAt.UTC(),
		UpdatedAt:    p.UpdatedAt.UTC(),
	}

	query, args, err := qb.InsertModel("picks", insertModel, `ON CONFLICT (user_id, week)
DO UPDATE SET
    match_id = EXCLUDED.match_id,
    chosen_team_id = EXCLUDED.chosen_team_id,
    is_correct = EXCLUDED.is_correct,
    updated_at = EXCLUDED.updated_at
RETURNING id, user_id, match_id, week, chosen_team_id, is_correct, created_at, updated_at`)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("build pick upsert query: %w", err)
	}

	var row pickTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isConflict(err) {
			return pick.Pick{}, pick.ErrConflict
		}
		return pick.Pick{}, fmt.Errorf("upsert pick: %w", err)
	}

	return pickFromRow(row), nil
}

func (r *PickRepository) SetResult(ctx context.Context, pickID string, isCorrect bool) error {
	query, args, err := qb.Update("picks").
		Set("is_correct", isCorrect).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", pickID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set pick result query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set pick result: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("set pick result: pick %s not found", pickID)
	}
	return nil
}

func (r *PickRepository) CountCorrectByUser(ctx context.Context) (map[string]int, error) {
	query, args, err := qb.Select("user_id", "COUNT(*) AS score").
		From("picks").
		Where(qb.Expr("is_correct = TRUE")).
		GroupBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build count correct picks query: %w", err)
	}

	var rows []struct {
		UserID string `db:"user_id"`
		Score  int    `db:"score"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count correct picks: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.UserID] = row.Score
	}
	return out, nil
}

func (r *PickRepository) selectPicks(ctx context.Context, query string, args []any) ([]pick.Pick, error) {
	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select picks: %w", err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickFromRow(row))
	}
	return out, nil
}

func pickBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("picks")
}
