package team

import "fmt"

// Team is an NFL franchise users pick from.
type Team struct {
	ID           string
	Name         string
	Abbreviation string
	LogoURL      string
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.Abbreviation == "" {
		return fmt.Errorf("team abbreviation is required")
	}

	return nil
}
