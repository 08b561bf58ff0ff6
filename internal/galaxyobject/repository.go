package galaxyobject

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"galaxy-server/internal/shared/database"
	"galaxy-server/internal/shared/errors"
)

const batchSize = 500

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing galaxy object repository")
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) getExecutor(tx *database.Tx) database.Executor {
	if tx != nil {
		return tx
	}
	return r.db
}

// CreateBatch registers count new identities of the given kind and returns their ids in insertion order
func (r *Repository) CreateBatch(ctx context.Context, kind Kind, count int, tx *database.Tx) ([]int64, error) {
	if count <= 0 {
		return []int64{}, nil
	}

	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "galaxy_object_repository",
		"operation", "create_batch",
		"kind", kind,
		"count", count,
	)
	logger.Debug("Registering galaxy objects")

	ids := make([]int64, 0, count)
	for remaining := count; remaining > 0; remaining -= batchSize {
		n := min(remaining, batchSize)

		values := strings.TrimSuffix(strings.Repeat("(?), ", n), ", ")
		args := make([]interface{}, n)
		for i := range args {
			args[i] = kind
		}

		query := r.db.Rebind(`INSERT INTO galaxy_objects (obj_type) VALUES ` + values + ` RETURNING id`)

		batch, err := scanIDs(exec.QueryContext(ctx, query, args...))
		if err != nil {
			logger.Error("Failed to register galaxy objects", "error", err)
			return nil, database.ClassifyError("failed to register galaxy objects", err)
		}
		ids = append(ids, batch...)
	}

	logger.Debug("Galaxy objects registered", "first_id", ids[0])
	return ids, nil
}

// Get returns the handle stored for id
func (r *Repository) Get(ctx context.Context, id int64, tx *database.Tx) (*Handle, error) {
	exec := r.getExecutor(tx)

	var handle Handle
	err := exec.QueryRowContext(ctx,
		r.db.Rebind(`SELECT id, obj_type FROM galaxy_objects WHERE id = ?`),
		id,
	).Scan(&handle.ID, &handle.Kind)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("galaxy object %d not found", id)
		}
		return nil, database.ClassifyError("failed to get galaxy object", err)
	}

	return &handle, nil
}

// UpdateKind flips the kind of exactly one object from one kind to another.
// Zero affected rows means the object is gone or already changed kind.
func (r *Repository) UpdateKind(ctx context.Context, id int64, from, to Kind, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "galaxy_object_repository",
		"operation", "update_kind",
		"galaxy_object_id", id,
		"from", from,
		"to", to,
	)

	result, err := exec.ExecContext(ctx,
		r.db.Rebind(`UPDATE galaxy_objects SET obj_type = ? WHERE id = ? AND obj_type = ?`),
		to, id, from,
	)
	if err != nil {
		logger.Error("Failed to update galaxy object kind", "error", err)
		return database.ClassifyError("failed to update galaxy object kind", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected != 1 {
		logger.Warn("Galaxy object kind update matched no row", "rows_affected", rowsAffected)
		return errors.NotFoundf("galaxy object %d of kind %s not found", id, from)
	}

	logger.Debug("Galaxy object kind updated")
	return nil
}

// DeleteByIDs removes the given identities and returns the number removed
func (r *Repository) DeleteByIDs(ctx context.Context, ids []int64, tx *database.Tx) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	exec := r.getExecutor(tx)

	var deleted int64
	for _, chunk := range database.Chunk(ids, batchSize) {
		query := r.db.Rebind(`DELETE FROM galaxy_objects WHERE id IN (` + database.Placeholders(len(chunk)) + `)`)
		result, err := exec.ExecContext(ctx, query, database.Int64Args(chunk)...)
		if err != nil {
			r.logger.Error("Failed to delete galaxy objects", "error", err, "count", len(chunk))
			return deleted, database.ClassifyError("failed to delete galaxy objects", err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return deleted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted += n
	}

	return deleted, nil
}

func (r *Repository) Count(ctx context.Context, tx *database.Tx) (int, error) {
	exec := r.getExecutor(tx)

	var count int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM galaxy_objects`).Scan(&count); err != nil {
		return 0, database.ClassifyError("failed to count galaxy objects", err)
	}
	return count, nil
}

func (r *Repository) CountByKind(ctx context.Context, tx *database.Tx) (*Counts, error) {
	exec := r.getExecutor(tx)

	rows, err := exec.QueryContext(ctx, `SELECT obj_type, COUNT(*) FROM galaxy_objects GROUP BY obj_type`)
	if err != nil {
		r.logger.Error("Failed to count galaxy objects by kind", "error", err)
		return nil, database.ClassifyError("failed to count galaxy objects", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Error("Failed to close rows", "error", err)
		}
	}()

	var counts Counts
	for rows.Next() {
		var kind Kind
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan galaxy object count: %w", err)
		}

		switch kind {
		case KindSystem:
			counts.Systems = n
		case KindSector:
			counts.Sectors = n
		case KindSectorFuture:
			counts.SectorFutures = n
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating galaxy object counts: %w", err)
	}

	return &counts, nil
}

func scanIDs(rows *sql.Rows, err error) ([]int64, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
