package database

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"

	"galaxy-server/internal/shared/errors"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// WithTx runs fn inside a single transaction. Any error returned by fn, or by
// the commit, rolls back every statement fn issued.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	logger := slog.With("component", "database", "operation", "transaction")

	tx, err := db.BeginTxContext(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", "error", err)
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !stderrors.Is(err, sql.ErrTxDone) {
			logger.Error("Failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		logger.Debug("Transaction aborted", "error", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit transaction", "error", err)
		return ClassifyError("failed to commit transaction", err)
	}

	return nil
}

// ClassifyError wraps a driver error into the application error taxonomy.
// Errors that already carry a type are returned as they are.
func ClassifyError(message string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "23":
			return errors.WrapConstraint(message, err)
		case pqErr.Code.Class() == "40", pqErr.Code == "55P03":
			return errors.WrapTransactionConflict(message, err)
		}
		return errors.WrapInternal(message, err)
	}

	var sqliteErr *sqlite.Error
	if stderrors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return errors.WrapConstraint(message, err)
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return errors.WrapTransactionConflict(message, err)
		}
		return errors.WrapInternal(message, err)
	}

	return errors.WrapInternal(message, err)
}
