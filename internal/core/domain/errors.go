package domain

import "errors"

// Credential errors.
var (
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials covers both "unknown email" and "wrong password"
	// so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Token errors, detectable without any store access.
var (
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenSignature = errors.New("invalid token signature")
	ErrTokenExpired   = errors.New("token expired")
)

// Session errors.
var (
	ErrSessionRevoked   = errors.New("session revoked")
	ErrSessionExpired   = errors.New("session expired")
	ErrSessionNotFound  = errors.New("session not found")
	ErrNoActiveDatabase = errors.New("no active database selected")
)

// Infrastructure errors.
var (
	ErrBackendUnavailable      = errors.New("session backend unavailable")
	ErrEncryptionNotConfigured = errors.New("encryption key not configured")
	ErrDatabaseUnreachable     = errors.New("database unreachable")
)
