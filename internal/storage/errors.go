package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("storage: not found")

// mapNotFound translates pgx.ErrNoRows into ErrNotFound, wrapped with what
// was being looked up, so callers (the read API handlers) can use
// errors.Is(err, storage.ErrNotFound) to decide on a 404 (spec §7).
func mapNotFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("storage: %s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("storage: %s: %w", what, err)
}

// ClassifyError maps a store-layer error to one of the record-level error
// taxonomy entries spec §7 names for the store adapter
// (database_connection_error, sql_syntax_error, unique_violation), using
// the Postgres SQLSTATE code where one is available. Returns "" when err
// doesn't match a known Postgres error shape, leaving the caller to fall
// back to a more specific or generic classification.
func ClassifyError(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return "unique_violation"
		case strings.HasPrefix(pgErr.Code, "42"):
			return "sql_syntax_error"
		case strings.HasPrefix(pgErr.Code, "08"):
			return "database_connection_error"
		}
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return "database_connection_error"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
		return "database_connection_error"
	}
	return ""
}
