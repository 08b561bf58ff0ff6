package sector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"galaxy-server/internal/shared/database"
	"galaxy-server/internal/shared/errors"
)

// CreateFutures stores future rows for already registered galaxy object ids
func (r *Repository) CreateFutures(ctx context.Context, futures []Future, tx *database.Tx) error {
	if len(futures) == 0 {
		return nil
	}

	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "sector_repository",
		"operation", "create_futures",
		"parent_id", futures[0].ParentID,
		"count", len(futures),
	)
	logger.Debug("Creating sector futures")

	for start := 0; start < len(futures); start += batchSize {
		batch := futures[start:min(start+batchSize, len(futures))]

		values := strings.TrimSuffix(strings.Repeat("(?, ?, ?, ?), ", len(batch)), ", ")
		args := make([]interface{}, 0, len(batch)*4)
		for _, f := range batch {
			args = append(args, f.ID, f.ParentID, f.Stars, f.Radius)
		}

		query := r.db.Rebind(`INSERT INTO star_sector_futures (id, parent_id, stars, radius) VALUES ` + values)
		if _, err := exec.ExecContext(ctx, query, args...); err != nil {
			logger.Error("Failed to create sector futures", "error", err, "offset", start)
			return database.ClassifyError("failed to create sector futures", err)
		}
	}

	logger.Debug("Sector futures created successfully")
	return nil
}

func (r *Repository) GetFuture(ctx context.Context, id int64, tx *database.Tx) (*Future, error) {
	return r.getFuture(ctx, id, "", tx)
}

// LockFuture reads a future holding an exclusive row lock until tx ends
func (r *Repository) LockFuture(ctx context.Context, id int64, tx *database.Tx) (*Future, error) {
	return r.getFuture(ctx, id, r.db.ForUpdate(), tx)
}

func (r *Repository) getFuture(ctx context.Context, id int64, suffix string, tx *database.Tx) (*Future, error) {
	var future Future
	err := r.getExecutor(tx).QueryRowContext(ctx,
		r.db.Rebind(`SELECT id, parent_id, stars, radius FROM star_sector_futures WHERE id = ?`+suffix),
		id,
	).Scan(&future.ID, &future.ParentID, &future.Stars, &future.Radius)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("sector future %d not found", id)
		}
		r.logger.Error("Failed to get sector future", "error", err, "future_id", id)
		return nil, database.ClassifyError("failed to get sector future", err)
	}
	return &future, nil
}

func (r *Repository) GetChildFutures(ctx context.Context, parentID int64, tx *database.Tx) ([]Future, error) {
	rows, err := r.getExecutor(tx).QueryContext(ctx,
		r.db.Rebind(`
			SELECT id, parent_id, stars, radius
			FROM star_sector_futures
			WHERE parent_id = ?
			ORDER BY id
		`),
		parentID,
	)
	if err != nil {
		r.logger.Error("Failed to query sector futures", "error", err, "parent_id", parentID)
		return nil, database.ClassifyError("failed to query sector futures", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Error("Failed to close rows", "error", err)
		}
	}()

	futures := []Future{}
	for rows.Next() {
		var f Future
		if err := rows.Scan(&f.ID, &f.ParentID, &f.Stars, &f.Radius); err != nil {
			return nil, fmt.Errorf("failed to scan sector future: %w", err)
		}
		futures = append(futures, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sector futures: %w", err)
	}

	return futures, nil
}

func (r *Repository) ChildFutureIDs(ctx context.Context, parentID int64, tx *database.Tx) ([]int64, error) {
	ids, err := r.scanIDs(r.getExecutor(tx).QueryContext(ctx,
		r.db.Rebind(`SELECT id FROM star_sector_futures WHERE parent_id = ? ORDER BY id`),
		parentID,
	))
	if err != nil {
		r.logger.Error("Failed to query sector future ids", "error", err, "parent_id", parentID)
		return nil, database.ClassifyError("failed to query sector future ids", err)
	}
	return ids, nil
}

func (r *Repository) DeleteFutures(ctx context.Context, ids []int64, tx *database.Tx) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	exec := r.getExecutor(tx)

	var deleted int64
	for _, chunk := range database.Chunk(ids, batchSize) {
		query := r.db.Rebind(`DELETE FROM star_sector_futures WHERE id IN (` + database.Placeholders(len(chunk)) + `)`)
		result, err := exec.ExecContext(ctx, query, database.Int64Args(chunk)...)
		if err != nil {
			r.logger.Error("Failed to delete sector futures", "error", err, "count", len(chunk))
			return deleted, database.ClassifyError("failed to delete sector futures", err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return deleted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted += n
	}

	return deleted, nil
}

func (r *Repository) CountFutures(ctx context.Context, tx *database.Tx) (int, error) {
	var count int
	if err := r.getExecutor(tx).QueryRowContext(ctx, `SELECT COUNT(*) FROM star_sector_futures`).Scan(&count); err != nil {
		return 0, database.ClassifyError("failed to count sector futures", err)
	}
	return count, nil
}
