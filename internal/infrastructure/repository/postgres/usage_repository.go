package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/offmue/pickem/internal/domain/usage"
)

// ledgerQuery derives one row per active pick: the chosen team and, when
// the match is known, the implied losing opponent. Counting these rows is
// the only source of usage; nothing is stored or incremented.
const ledgerQuery = `
SELECT
    p.chosen_team_id,
    CASE
        WHEN p.chosen_team_id = m.home_team_id THEN m.away_team_id
        WHEN p.chosen_team_id = m.away_team_id THEN m.home_team_id
    END AS opponent_team_id
FROM picks p
LEFT JOIN matches m ON m.id = p.match_id
WHERE p.user_id = $1`

type UsageRepository struct {
	db *sqlx.DB
}

func NewUsageRepository(db *sqlx.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

func (r *UsageRepository) GetLedger(ctx context.Context, userID string) (usage.Ledger, error) {
	var rows []struct {
		ChosenTeamID   string         `db:"chosen_team_id"`
		OpponentTeamID sql.NullString `db:"opponent_team_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, ledgerQuery, userID); err != nil {
		return usage.Ledger{}, fmt.Errorf("derive usage ledger: %w", err)
	}

	ledger := usage.NewLedger(userID)
	for _, row := range rows {
		ledger.AddWinner(row.ChosenTeamID)
		if row.OpponentTeamID.Valid && row.OpponentTeamID.String != "" {
			ledger.AddLoser(row.OpponentTeamID.String)
		}
	}
	return ledger, nil
}
