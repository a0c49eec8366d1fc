package ports

import (
	"context"

	"github.com/datamind/datamind-api/internal/core/domain"
)

// CredentialRepository defines persistence for user identity records.
type CredentialRepository interface {
	// FindByEmail returns domain.ErrInvalidCredentials when no user matches;
	// the repository never distinguishes "unknown" from "wrong password".
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create returns domain.ErrUserExists on a duplicate email.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
