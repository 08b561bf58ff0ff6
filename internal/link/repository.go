package link

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"galaxy-server/internal/galaxyobject"
	"galaxy-server/internal/shared/database"
)

const (
	insertBatchSize = 250
	idBatchSize     = 250
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing link repository")
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

// InsertBatch persists links and returns the number stored
func (r *Repository) InsertBatch(ctx context.Context, links []Link, tx *database.Tx) (int, error) {
	if len(links) == 0 {
		return 0, nil
	}

	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "link_repository",
		"operation", "insert_batch",
		"count", len(links),
	)
	logger.Debug("Inserting links")

	for start := 0; start < len(links); start += insertBatchSize {
		batch := links[start:min(start+insertBatchSize, len(links))]

		values := strings.TrimSuffix(strings.Repeat("(?, ?, ?, ?), ", len(batch)), ", ")
		args := make([]interface{}, 0, len(batch)*4)
		for _, l := range batch {
			args = append(args, l.A.ID, l.A.Kind, l.B.ID, l.B.Kind)
		}

		query := r.db.Rebind(`INSERT INTO star_links (a_id, a_obj_type, b_id, b_obj_type) VALUES ` + values)
		if _, err := exec.ExecContext(ctx, query, args...); err != nil {
			logger.Error("Failed to insert links", "error", err, "offset", start)
			return start, database.ClassifyError("failed to insert links", err)
		}
	}

	logger.Debug("Links inserted")
	return len(links), nil
}

// DeleteForObjects removes every link with an endpoint among ids
func (r *Repository) DeleteForObjects(ctx context.Context, ids []int64, tx *database.Tx) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	exec := r.getExecutor(tx)

	var deleted int64
	for _, chunk := range database.Chunk(ids, idBatchSize) {
		in := database.Placeholders(len(chunk))
		args := append(database.Int64Args(chunk), database.Int64Args(chunk)...)

		query := r.db.Rebind(`DELETE FROM star_links WHERE a_id IN (` + in + `) OR b_id IN (` + in + `)`)
		result, err := exec.ExecContext(ctx, query, args...)
		if err != nil {
			r.logger.Error("Failed to delete links", "error", err, "object_count", len(chunk))
			return deleted, database.ClassifyError("failed to delete links", err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return deleted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted += n
	}

	r.logger.Debug("Links deleted", "object_count", len(ids), "deleted", deleted)
	return deleted, nil
}

// ListForObjects returns every link with an endpoint among ids, each once
func (r *Repository) ListForObjects(ctx context.Context, ids []int64, tx *database.Tx) ([]Link, error) {
	if len(ids) == 0 {
		return []Link{}, nil
	}

	exec := r.getExecutor(tx)

	seen := make(map[int64]struct{})
	var links []Link
	for _, chunk := range database.Chunk(ids, idBatchSize) {
		in := database.Placeholders(len(chunk))
		args := append(database.Int64Args(chunk), database.Int64Args(chunk)...)

		query := r.db.Rebind(`
			SELECT id, a_id, a_obj_type, b_id, b_obj_type
			FROM star_links
			WHERE a_id IN (` + in + `) OR b_id IN (` + in + `)
			ORDER BY id`)

		batch, err := r.scanLinks(exec.QueryContext(ctx, query, args...))
		if err != nil {
			r.logger.Error("Failed to list links", "error", err)
			return nil, database.ClassifyError("failed to list links", err)
		}

		for _, l := range batch {
			if _, ok := seen[l.ID]; ok {
				continue
			}
			seen[l.ID] = struct{}{}
			links = append(links, l)
		}
	}

	return links, nil
}

func (r *Repository) Count(ctx context.Context, tx *database.Tx) (int, error) {
	exec := r.getExecutor(tx)

	var count int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM star_links`).Scan(&count); err != nil {
		return 0, database.ClassifyError("failed to count links", err)
	}
	return count, nil
}

func (r *Repository) scanLinks(rows *sql.Rows, err error) ([]Link, error) {
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Error("Failed to close rows", "error", err)
		}
	}()

	var links []Link
	for rows.Next() {
		var l Link
		var a, b galaxyobject.Handle
		if err := rows.Scan(&l.ID, &a.ID, &a.Kind, &b.ID, &b.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		l.A, l.B = a, b
		links = append(links, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}
