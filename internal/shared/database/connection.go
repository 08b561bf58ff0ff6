package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"galaxy-server/internal/shared/config"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
	Dialect Dialect
}

type Tx struct {
	*sql.Tx
	Dialect Dialect
}

type Executor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (db *DB) BeginTxContext(ctx context.Context) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, db.Dialect.TxOptions())
	if err != nil {
		return nil, ClassifyError("failed to begin transaction", err)
	}
	return &Tx{Tx: tx, Dialect: db.Dialect}, nil
}

// Rebind rewrites ? placeholders for the connected dialect
func (db *DB) Rebind(query string) string {
	return db.Dialect.Rebind(query)
}

// ForUpdate returns the row lock clause of the connected dialect
func (db *DB) ForUpdate() string {
	return db.Dialect.ForUpdate()
}

// Open connects using the driver selected in cfg and verifies the connection
func Open(cfg *config.Config) (*DB, error) {
	logger := slog.With("component", "database", "operation", "connect")
	logger.Debug("Initializing database connection")

	dialect, err := DialectFor(cfg.Database.Driver)
	if err != nil {
		logger.Error("Unsupported database driver", "driver", cfg.Database.Driver)
		return nil, err
	}

	if dialect == Postgres {
		logger.Info("Connecting to database",
			"driver", cfg.Database.Driver,
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"user", cfg.Database.User,
			"database", cfg.Database.Name,
			"sslmode", cfg.Database.SSLMode,
			"max_open_conns", cfg.Database.MaxOpenConns,
			"max_idle_conns", cfg.Database.MaxIdleConns,
		)
	} else {
		logger.Info("Opening database",
			"driver", cfg.Database.Driver,
			"path", cfg.Database.SQLitePath,
			"max_open_conns", cfg.Database.MaxOpenConns,
		)
	}

	sqlDB, err := sql.Open(dialect.DriverName(), cfg.ConnectionString())
	if err != nil {
		logger.Error("Failed to open database connection", "error", err, "driver", cfg.Database.Driver)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	logger.Debug("Testing database connection with ping")
	if err := sqlDB.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err, "driver", cfg.Database.Driver)
		if closeErr := sqlDB.Close(); closeErr != nil {
			logger.Error("Failed to close database after ping failure", "close_error", closeErr, "ping_error", err)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established successfully", "driver", cfg.Database.Driver)

	return &DB{DB: sqlDB, Dialect: dialect}, nil
}
