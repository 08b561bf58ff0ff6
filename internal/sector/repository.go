package sector

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"galaxy-server/internal/shared/database"
	"galaxy-server/internal/shared/errors"
)

const batchSize = 500

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing sector repository")

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

// CreateSector stores a sector row for an already registered galaxy object id
func (r *Repository) CreateSector(ctx context.Context, id int64, parentID *int64, tx *database.Tx) (*Sector, error) {
	logger := r.logger.With(
		"component", "sector_repository",
		"operation", "create_sector",
		"sector_id", id,
	)
	if parentID != nil {
		logger = logger.With("parent_id", *parentID)
	}
	logger.Debug("Creating sector")

	_, err := r.getExecutor(tx).ExecContext(ctx,
		r.db.Rebind(`INSERT INTO star_sectors (id, parent_id) VALUES (?, ?)`),
		id, parentID,
	)
	if err != nil {
		logger.Error("Failed to create sector", "error", err)
		return nil, database.ClassifyError("failed to create sector", err)
	}

	logger.Debug("Sector created successfully")
	return &Sector{ID: id, ParentID: parentID}, nil
}

func (r *Repository) GetSector(ctx context.Context, id int64, tx *database.Tx) (*Sector, error) {
	return r.getSector(ctx, id, "", tx)
}

// LockSector reads a sector holding an exclusive row lock until tx ends
func (r *Repository) LockSector(ctx context.Context, id int64, tx *database.Tx) (*Sector, error) {
	return r.getSector(ctx, id, r.db.ForUpdate(), tx)
}

func (r *Repository) getSector(ctx context.Context, id int64, suffix string, tx *database.Tx) (*Sector, error) {
	var sector Sector
	var parentID sql.NullInt64

	err := r.getExecutor(tx).QueryRowContext(ctx,
		r.db.Rebind(`SELECT id, parent_id FROM star_sectors WHERE id = ?`+suffix),
		id,
	).Scan(&sector.ID, &parentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("sector %d not found", id)
		}
		r.logger.Error("Failed to get sector", "error", err, "sector_id", id)
		return nil, database.ClassifyError("failed to get sector", err)
	}

	if parentID.Valid {
		sector.ParentID = &parentID.Int64
	}
	return &sector, nil
}

// LockChildIDs returns the ids of the direct child sectors of parentID, locked until tx ends
func (r *Repository) LockChildIDs(ctx context.Context, parentID int64, tx *database.Tx) ([]int64, error) {
	query := r.db.Rebind(`SELECT id FROM star_sectors WHERE parent_id = ? ORDER BY id` + r.db.ForUpdate())

	ids, err := r.scanIDs(r.getExecutor(tx).QueryContext(ctx, query, parentID))
	if err != nil {
		r.logger.Error("Failed to lock child sectors", "error", err, "parent_id", parentID)
		return nil, database.ClassifyError("failed to lock child sectors", err)
	}
	return ids, nil
}

func (r *Repository) GetChildSectors(ctx context.Context, parentID int64, tx *database.Tx) ([]Sector, error) {
	query := r.db.Rebind(`SELECT id, parent_id FROM star_sectors WHERE parent_id = ? ORDER BY id`)

	sectors, err := r.scanSectors(r.getExecutor(tx).QueryContext(ctx, query, parentID))
	if err != nil {
		r.logger.Error("Failed to query child sectors", "error", err, "parent_id", parentID)
		return nil, database.ClassifyError("failed to query child sectors", err)
	}
	return sectors, nil
}

// ListRoots pages through sectors without a parent
func (r *Repository) ListRoots(ctx context.Context, limit, offset int, tx *database.Tx) ([]Sector, error) {
	query := r.db.Rebind(`
		SELECT id, parent_id
		FROM star_sectors
		WHERE parent_id IS NULL
		ORDER BY id
		LIMIT ? OFFSET ?
	`)

	sectors, err := r.scanSectors(r.getExecutor(tx).QueryContext(ctx, query, limit, offset))
	if err != nil {
		r.logger.Error("Failed to list root sectors", "error", err)
		return nil, database.ClassifyError("failed to list root sectors", err)
	}
	return sectors, nil
}

func (r *Repository) DeleteSector(ctx context.Context, id int64, tx *database.Tx) error {
	result, err := r.getExecutor(tx).ExecContext(ctx,
		r.db.Rebind(`DELETE FROM star_sectors WHERE id = ?`),
		id,
	)
	if err != nil {
		r.logger.Error("Failed to delete sector", "error", err, "sector_id", id)
		return database.ClassifyError("failed to delete sector", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NotFoundf("sector %d not found", id)
	}
	return nil
}

func (r *Repository) CountSectors(ctx context.Context, tx *database.Tx) (int, error) {
	var count int
	if err := r.getExecutor(tx).QueryRowContext(ctx, `SELECT COUNT(*) FROM star_sectors`).Scan(&count); err != nil {
		return 0, database.ClassifyError("failed to count sectors", err)
	}
	return count, nil
}

func (r *Repository) scanSectors(rows *sql.Rows, err error) ([]Sector, error) {
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Error("Failed to close rows", "error", err)
		}
	}()

	sectors := []Sector{}
	for rows.Next() {
		var sector Sector
		var parentID sql.NullInt64
		if err := rows.Scan(&sector.ID, &parentID); err != nil {
			return nil, fmt.Errorf("failed to scan sector: %w", err)
		}
		if parentID.Valid {
			id := parentID.Int64
			sector.ParentID = &id
		}
		sectors = append(sectors, sector)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sectors: %w", err)
	}

	return sectors, nil
}

func (r *Repository) scanIDs(rows *sql.Rows, err error) ([]int64, error) {
	if err != nil {
		return nil, err
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
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ids: %w", err)
	}

	return ids, nil
}
