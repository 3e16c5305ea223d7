package db

import (
	"context"
	"time"
)

type Team struct {
	Id          string
	Name        string
	MemberCount int
	CreatedAt   time.Time
}

type TeamInterface interface {
	// List teams ordered by name, with member counts.
	List(ctx context.Context) ([]Team, error)

	// Create a team.
	Create(ctx context.Context, name string) (*Team, error)

	// Delete a team. Its members become team-less.
	//
	// # Returns
	//
	// - error: ErrMissing when not found.
	Delete(ctx context.Context, teamId string) error
}
