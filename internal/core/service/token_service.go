package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/datamind/datamind-api/internal/core/domain"
)

// Claims is the token payload: the registered subject/expiry set plus the
// session id binding the token to exactly one session.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	Email     string `json:"email,omitempty"`
}

// TokenIdentity is the verified content of a token.
type TokenIdentity struct {
	UserID    string
	SessionID string
	Email     string
}

// TokenService issues and verifies HS256 identity tokens. Verification is a
// pure function of the token and the signing key, with no store access, so it
// stays cheap and horizontally scalable. Revocation is handled one layer up
// by deleting session state.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue signs a token bound to the given user and session, valid for ttl.
func (s *TokenService) Issue(userID, sessionID, email string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SessionID: sessionID,
		Email:     email,
	})
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the token identity.
// Failures map onto the domain taxonomy: ErrTokenExpired, ErrTokenSignature,
// ErrTokenMalformed.
func (s *TokenService) Verify(tokenString string) (*TokenIdentity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, domain.ErrTokenSignature
		default:
			return nil, domain.ErrTokenMalformed
		}
	}
	if !token.Valid || claims.Subject == "" || claims.SessionID == "" {
		return nil, domain.ErrTokenMalformed
	}

	return &TokenIdentity{
		UserID:    claims.Subject,
		SessionID: claims.SessionID,
		Email:     claims.Email,
	}, nil
}
