package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"visitor-registration/internal/config"
)

// ErrStorage wraps every failure of the underlying store so callers can
// distinguish "store unreachable" from domain outcomes like a zero-row
// conditional update.
var ErrStorage = errors.New("storage error")

type Provider interface {
	Close() error
	GetSchemaVersion(ctx context.Context) (int, error)

	// Visitor record methods
	CreateVisitor(ctx context.Context, visitor Visitor) (int64, error)
	ListPresent(ctx context.Context) ([]Visitor, error)
	ListAll(ctx context.Context) ([]Visitor, error)
	// SetDeparted marks the row with the given id as departed, but only if it
	// is still present. Returns the number of rows updated (0 or 1). A result
	// of 0 is not an error; it means the record was already departed or the
	// id is unknown.
	SetDeparted(ctx context.Context, id int64, at time.Time) (int64, error)
	// DeleteDeparted removes every departed row and returns how many were
	// removed. Present rows are never touched.
	DeleteDeparted(ctx context.Context) (int64, error)

	// Nonce methods backing the SQL nonce store
	CreateNonce(ctx context.Context, nonce string, expiresAt time.Time) error
	ExistsNonce(ctx context.Context, nonce string) (bool, error)
	ConsumeNonce(ctx context.Context, nonce string) (bool, error)
	ExpireNonces(ctx context.Context, now time.Time) error
}

func NewProvider(config *config.Storage) Provider {
	switch {
	case config.SQLite != nil:
		provider := NewSQLiteProvider(config)
		if provider == nil {
			slog.Error("Failed to open SQLite storage", "path", config.SQLite.Path)
			return nil
		}
		if err := provider.runMigrations("sqlite3"); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			return nil
		}
		return provider

	default:
		slog.Error("Unsupported storage configuration", "config", config)
	}

	return nil
}
