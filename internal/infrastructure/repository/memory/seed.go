package memory

import (
	"time"

	"github.com/offmue/pickem/internal/domain/match"
	"github.com/offmue/pickem/internal/domain/team"
	"github.com/offmue/pickem/internal/domain/user"
)

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "buf", Name: "Buffalo Bills", Abbreviation: "BUF"},
		{ID: "kc", Name: "Kansas City Chiefs", Abbreviation: "KC"},
		{ID: "den", Name: "Denver Broncos", Abbreviation: "DEN"},
		{ID: "phi", Name: "Philadelphia Eagles", Abbreviation: "PHI"},
		{ID: "dal", Name: "Dallas Cowboys", Abbreviation: "DAL"},
		{ID: "sf", Name: "San Francisco 49ers", Abbreviation: "SF"},
		{ID: "det", Name: "Detroit Lions", Abbreviation: "DET"},
		{ID: "gb", Name: "Green Bay Packers", Abbreviation: "GB"},
		{ID: "bal", Name: "Baltimore Ravens", Abbreviation: "BAL"},
		{ID: "cin", Name: "Cincinnati Bengals", Abbreviation: "CIN"},
	}
}

func SeedMatches() []match.Match {
	kickoff := func(day, hour int) time.Time {
		return time.Date(2025, 9, day, hour, 0, 0, 0, time.UTC)
	}

	return []match.Match{
		{ID: "2025-w1-phi-dal", Week: 1, HomeTeamID: "phi", AwayTeamID: "dal", StartTime: kickoff(5, 0)},
		{ID: "2025-w1-kc-den", Week: 1, HomeTeamID: "kc", AwayTeamID: "den", StartTime: kickoff(7, 17)},
		{ID: "2025-w1-buf-bal", Week: 1, HomeTeamID: "buf", AwayTeamID: "bal", StartTime: kickoff(8, 0)},
		{ID: "2025-w1-sf-det", Week: 1, HomeTeamID: "sf", AwayTeamID: "det", StartTime: kickoff(8, 20)},
		{ID: "2025-w2-dal-kc", Week: 2, HomeTeamID: "dal", AwayTeamID: "kc", StartTime: kickoff(14, 17)},
		{ID: "2025-w2-den-buf", Week: 2, HomeTeamID: "den", AwayTeamID: "buf", StartTime: kickoff(14, 20)},
		{ID: "2025-w2-gb-cin", Week: 2, HomeTeamID: "gb", AwayTeamID: "cin", StartTime: kickoff(15, 0)},
	}
}

func SeedUsers() []user.User {
	return []user.User{
		{ID: "u-manuel", Username: "manuel"},
		{ID: "u-daniel", Username: "daniel"},
		{ID: "u-raff", Username: "raff"},
		{ID: "u-haunschi", Username: "haunschi"},
	}
}
