package user

import "context"

// Repository describes user lookup needs from use cases.
type Repository interface {
	ListAll(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, userID string) (User, bool, error)
}
