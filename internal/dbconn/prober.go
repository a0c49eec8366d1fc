// Package dbconn is the database-connection helper: the single component
// authorized to see decrypted database credentials. Importing
// CredentialSource anywhere else is an auditable boundary violation;
// general engines consume ports.SessionBroker and its sanitized views only.
package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/datamind/datamind-api/internal/core/domain"
)

const probeTimeout = 5 * time.Second

// CredentialSource is the privileged decrypt path. Implemented by the
// session broker; this package is its only caller.
type CredentialSource interface {
	Credentials(ctx context.Context, token string) (*domain.DatabaseCredentials, error)
}

// Prober validates that a session's selected database is reachable with the
// stored credentials. Credentials are fetched once per attempt, used, and
// discarded; they are never cached or logged.
type Prober struct {
	source CredentialSource
	log    zerolog.Logger
}

func NewProber(source CredentialSource, log zerolog.Logger) *Prober {
	return &Prober{source: source, log: log}
}

// Probe opens a connection to the session's active database, pings it, and
// closes it. Returns domain.ErrDatabaseUnreachable when the database cannot
// be reached with the stored credentials.
func (p *Prober) Probe(ctx context.Context, token string) error {
	creds, err := p.source.Credentials(ctx, token)
	if err != nil {
		return err
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	switch creds.Dialect {
	case domain.DialectMySQL:
		err = probeMySQL(probeCtx, creds.DSN())
	default:
		err = probePostgres(probeCtx, creds.DSN())
	}
	if err != nil {
		// Log identity fields only; the DSN carries the plaintext password.
		p.log.Warn().
			Str("dialect", creds.Dialect).
			Str("host", creds.Host).
			Str("database", creds.Database).
			Msg("database probe failed")
		return fmt.Errorf("%w: %v", domain.ErrDatabaseUnreachable, err)
	}
	return nil
}

func probePostgres(ctx context.Context, dsn string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	return conn.Ping(ctx)
}

func probeMySQL(ctx context.Context, dsn string) error {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.PingContext(ctx)
}
