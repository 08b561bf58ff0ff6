package system

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"galaxy-server/internal/shared/database"
)

const batchSize = 300

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing system repository")

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

// InsertBatch stores one system per registered id, named from names by position
func (r *Repository) InsertBatch(ctx context.Context, sectorID int64, ids []int64, names []string, tx *database.Tx) ([]StarSystem, error) {
	if len(ids) != len(names) {
		return nil, fmt.Errorf("got %d system ids but %d names", len(ids), len(names))
	}
	if len(ids) == 0 {
		return []StarSystem{}, nil
	}

	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "system_repository",
		"operation", "insert_batch",
		"sector_id", sectorID,
		"count", len(ids),
	)
	logger.Debug("Creating systems")

	systems := make([]StarSystem, len(ids))
	for i, id := range ids {
		systems[i] = StarSystem{ID: id, Name: names[i], SectorID: sectorID}
	}

	for start := 0; start < len(systems); start += batchSize {
		batch := systems[start:min(start+batchSize, len(systems))]

		values := strings.TrimSuffix(strings.Repeat("(?, ?, ?), ", len(batch)), ", ")
		args := make([]interface{}, 0, len(batch)*3)
		for _, s := range batch {
			args = append(args, s.ID, s.Name, s.SectorID)
		}

		query := r.db.Rebind(`INSERT INTO star_systems (id, name, sector_id) VALUES ` + values)
		if _, err := exec.ExecContext(ctx, query, args...); err != nil {
			logger.Error("Failed to create systems", "error", err, "offset", start)
			return nil, database.ClassifyError("failed to create systems", err)
		}
	}

	logger.Debug("Systems created successfully")
	return systems, nil
}

func (r *Repository) GetSystemsBySectorID(ctx context.Context, sectorID int64, tx *database.Tx) ([]StarSystem, error) {
	logger := r.logger.With("component", "system_repository", "operation", "get_systems_by_sector", "sector_id", sectorID)
	logger.Debug("Getting systems by sector ID")

	query := r.db.Rebind(`
		SELECT id, name, sector_id
		FROM star_systems
		WHERE sector_id = ?
		ORDER BY id
	`)

	systems, err := r.scanSystems(r.getExecutor(tx).QueryContext(ctx, query, sectorID))
	if err != nil {
		logger.Error("Failed to query systems", "error", err)
		return nil, database.ClassifyError("failed to query systems", err)
	}

	logger.Debug("Systems retrieved", "count", len(systems))
	return systems, nil
}

// IDsBySectorID returns the ids of the systems directly under sectorID
func (r *Repository) IDsBySectorID(ctx context.Context, sectorID int64, tx *database.Tx) ([]int64, error) {
	rows, err := r.getExecutor(tx).QueryContext(ctx,
		r.db.Rebind(`SELECT id FROM star_systems WHERE sector_id = ? ORDER BY id`),
		sectorID,
	)
	if err != nil {
		r.logger.Error("Failed to query system ids", "error", err, "sector_id", sectorID)
		return nil, database.ClassifyError("failed to query system ids", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Error("Failed to close rows", "error", err)
		}
	}()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan system id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating system ids: %w", err)
	}

	return ids, nil
}

// List pages through every system ordered by id
func (r *Repository) List(ctx context.Context, limit, offset int, tx *database.Tx) ([]StarSystem, error) {
	query := r.db.Rebind(`
		SELECT id, name, sector_id
		FROM star_systems
		ORDER BY id
		LIMIT ? OFFSET ?
	`)

	systems, err := r.scanSystems(r.getExecutor(tx).QueryContext(ctx, query, limit, offset))
	if err != nil {
		r.logger.Error("Failed to list systems", "error", err, "limit", limit, "offset", offset)
		return nil, database.ClassifyError("failed to list systems", err)
	}
	return systems, nil
}

func (r *Repository) DeleteByIDs(ctx context.Context, ids []int64, tx *database.Tx) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	exec := r.getExecutor(tx)

	var deleted int64
	for _, chunk := range database.Chunk(ids, batchSize) {
		query := r.db.Rebind(`DELETE FROM star_systems WHERE id IN (` + database.Placeholders(len(chunk)) + `)`)
		result, err := exec.ExecContext(ctx, query, database.Int64Args(chunk)...)
		if err != nil {
			r.logger.Error("Failed to delete systems", "error", err, "count", len(chunk))
			return deleted, database.ClassifyError("failed to delete systems", err)
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
	var count int
	if err := r.getExecutor(tx).QueryRowContext(ctx, `SELECT COUNT(*) FROM star_systems`).Scan(&count); err != nil {
		return 0, database.ClassifyError("failed to count systems", err)
	}
	return count, nil
}

func (r *Repository) scanSystems(rows *sql.Rows, err error) ([]StarSystem, error) {
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Error("Failed to close rows", "error", err)
		}
	}()

	systems := []StarSystem{}
	for rows.Next() {
		var system StarSystem
		if err := rows.Scan(&system.ID, &system.Name, &system.SectorID); err != nil {
			return nil, fmt.Errorf("failed to scan system: %w", err)
		}
		systems = append(systems, system)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating systems: %w", err)
	}

	return systems, nil
}
