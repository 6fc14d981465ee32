package storage

import (
	"log/slog"

	"github.com/jmoiron/sqlx"

	"visitor-registration/internal/config"
)

type SQLProvider struct {
	db *sqlx.DB

	config *config.Storage

	logger *slog.Logger
}

func NewSQLProvider(config *config.Storage, driverName string, dataSource string) (provider *SQLProvider) {
	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		return nil
	}

	logger := slog.With("component", "storage")

	return &SQLProvider{
		db:     db,
		config: config,
		logger: logger,
	}
}

func (p *SQLProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}
