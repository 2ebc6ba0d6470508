package postgres

import (
	"database/sql"
	"time"

	"github.com/offmue/pickem/internal/domain/team"
)

type teamTableModel struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Abbreviation string         `db:"abbreviation"`
	LogoURL      sql.NullString `db:"logo_url"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:           row.ID,
		Name:         row.Name,
		Abbreviation: row.Abbreviation,
		LogoURL:      row.LogoURL.String,
	}
}
