package db

import (
	"context"
	"time"
)

const ProviderGoogle = "GOOGLE"

// OAuth connection of a user to an external account.
type Integration struct {
	Id           string
	Provider     string
	AccessToken  string
	RefreshToken *string
	ExpiresAt    *time.Time
	AccountEmail string
	UserId       string
	CreatedAt    time.Time
}

type IntegrationParam struct {
	Provider     string
	AccessToken  string
	RefreshToken *string
	ExpiresAt    *time.Time
	AccountEmail string
	UserId       string
}

type IntegrationInterface interface {
	// Find integrations of the user for the provider, newer first.
	Find(ctx context.Context, userId string, provider string) ([]Integration, error)

	// Get integrations by ids, owned by the user.
	//
	// Ids not owned by the user are silently ignored.
	Get(ctx context.Context, userId string, integrationIds []string) (map[string]Integration, error)

	// Upsert an integration identified by (UserId, Provider, AccountEmail).
	//
	// When RefreshToken is nil, the stored refresh token is kept.
	Upsert(ctx context.Context, param IntegrationParam) (*Integration, error)
}
