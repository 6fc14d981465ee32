package storage

import (
	"visitor-registration/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteProvider struct {
	SQLProvider
}

func NewSQLiteProvider(config *config.Storage) (provider *SQLiteProvider) {
	sql := NewSQLProvider(config, "sqlite3", config.SQLite.Path)
	if sql == nil {
		return nil
	}
	return &SQLiteProvider{
		SQLProvider: *sql,
	}
}
