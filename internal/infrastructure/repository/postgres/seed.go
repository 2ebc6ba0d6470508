package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/offmue/pickem/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the baseline users, teams, and schedule into an empty
// database. A database that already has teams is left untouched.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM teams`); err != nil {
		return fmt.Errorf("count teams for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, u := range memory.SeedUsers() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO users (id, username)
VALUES (:id, :username)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":       u.ID,
			"username": u.Username,
		})
		if err != nil {
			return fmt.Errorf("bind seed user %s query: %w", u.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}

	for _, t := range memory.SeedTeams() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO teams (id, name, abbreviation, logo_url)
VALUES (:id, :name, :abbreviation, NULLIF(:logo_url, ''))
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":           t.ID,
			"name":         t.Name,
			"abbreviation": t.Abbreviation,
			"logo_url":     t.LogoURL,
		})
		if err != nil {
			return fmt.Errorf("bind seed team %s query: %w", t.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed team %s: %w", t.ID, err)
		}
	}

	for _, m := range memory.SeedMatches() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO matches (id, week, home_team_id, away_team_id, start_time)
VALUES (:id, :week, :home_team_id, :away_team_id, :start_time)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":           m.ID,
			"week":         m.Week,
			"home_team_id": m.HomeTeamID,
			"away_team_id": m.AwayTeamID,
			"start_time":   m.StartTime.UTC(),
		})
		if err != nil {
			return fmt.Errorf("bind seed match %s query: %w", m.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed match %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bootstrap seed: %w", err)
	}
	return nil
}
