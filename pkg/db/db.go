// Package db opens the SQLite database that holds the import history and
// applies schema migrations to it.
package db

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// FileName is the database file inside the skillport home directory.
const FileName = "history.db"

// DefaultPath returns the database path under home. An empty home means
// $SKILLPORT_HOME, then ~/.skillport.
func DefaultPath(home string) (string, error) {
	if home == "" {
		home = os.Getenv("SKILLPORT_HOME")
	}
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to get home directory")
		}
		home = filepath.Join(userHome, ".skillport")
	}
	return filepath.Join(home, FileName), nil
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
}

// Open opens or creates the database at path in WAL mode.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	conn, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// a single connection keeps the pragmas in effect for every query
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "failed to execute %s", pragma)
		}
	}

	var mode string
	if err := conn.GetContext(ctx, &mode, "PRAGMA journal_mode"); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to query journal mode")
	}
	if !strings.EqualFold(mode, "wal") {
		conn.Close()
		return nil, errors.Errorf("WAL mode not enabled, journal mode is %s", mode)
	}

	return conn, nil
}
