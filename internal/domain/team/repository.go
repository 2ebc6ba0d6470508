package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	ListAll(ctx context.Context) ([]Team, error)
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	Upsert(ctx context.Context, t Team) error
}
