package galaxy

import (
	"context"
	"log/slog"

	"galaxy-server/internal/shared/database"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing galaxy repository")
	return &Repository{db: db, logger: logger}
}

// GetStats counts every kind of object and the links in one statement
func (r *Repository) GetStats(ctx context.Context) (*Stats, error) {
	logger := r.logger.With("component", "galaxy_repository", "operation", "get_stats")
	logger.Debug("Counting galaxy objects")

	query := `
		SELECT
			(SELECT COUNT(*) FROM galaxy_objects WHERE obj_type = 'system'),
			(SELECT COUNT(*) FROM galaxy_objects WHERE obj_type = 'sector'),
			(SELECT COUNT(*) FROM galaxy_objects WHERE obj_type = 'sector_future'),
			(SELECT COUNT(*) FROM star_sectors WHERE parent_id IS NULL),
			(SELECT COUNT(*) FROM star_links)
	`

	var stats Stats
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.Systems,
		&stats.Sectors,
		&stats.SectorFutures,
		&stats.Roots,
		&stats.Links,
	)
	if err != nil {
		logger.Error("Failed to count galaxy objects", "error", err)
		return nil, database.ClassifyError("failed to get galaxy stats", err)
	}

	return &stats, nil
}
