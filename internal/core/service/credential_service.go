package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/datamind/datamind-api/internal/core/domain"
	"github.com/datamind/datamind-api/internal/core/ports"
)

// dummyHash is a bcrypt hash of an unguessable value, compared against when
// the email is unknown so that lookup misses cost the same as a wrong
// password. Keeps the error path enumeration-safe in timing as well as shape.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// CredentialService implements signup and credential verification.
type CredentialService struct {
	repo ports.CredentialRepository
}

func NewCredentialService(repo ports.CredentialRepository) *CredentialService {
	return &CredentialService{repo: repo}
}

// Signup creates a user with a bcrypt-hashed password. The plaintext never
// reaches the repository. Fails with domain.ErrUserExists on duplicates and
// domain.ErrInvalidCredentials on empty input.
func (s *CredentialService) Signup(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	return s.repo.Create(ctx, user)
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password both return domain.ErrInvalidCredentials.
func (s *CredentialService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		// Burn a comparison so the miss costs as much as a mismatch.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
