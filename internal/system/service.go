package system

import (
	"context"
	"log/slog"

	"galaxy-server/internal/galaxyobject"
	"galaxy-server/internal/shared/database"
	"galaxy-server/internal/shared/errors"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

type Service struct {
	repo    *Repository
	objects *galaxyobject.Repository
	namer   *Namer
	logger  *slog.Logger
}

func NewService(repo *Repository, objects *galaxyobject.Repository, namer *Namer, logger *slog.Logger) *Service {
	logger.Debug("Initializing system service")

	return &Service{
		repo:    repo,
		objects: objects,
		namer:   namer,
		logger:  logger,
	}
}

// GenerateSystems registers count named systems under sectorID within tx and
// returns their handles in creation order.
func (s *Service) GenerateSystems(ctx context.Context, sectorID int64, count int, tx *database.Tx) ([]galaxyobject.Handle, error) {
	logger := s.logger.With("component", "system_service", "operation", "generate_systems", "sector_id", sectorID, "count", count)
	logger.Debug("Generating systems")

	ids, err := s.objects.CreateBatch(ctx, galaxyobject.KindSystem, count, tx)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.InsertBatch(ctx, sectorID, ids, s.namer.Batch(len(ids)), tx); err != nil {
		return nil, err
	}

	logger.Debug("Systems generated")
	return galaxyobject.Handles(ids, galaxyobject.KindSystem), nil
}

func (s *Service) GetSystemsBySectorID(ctx context.Context, sectorID int64) ([]StarSystem, error) {
	return s.repo.GetSystemsBySectorID(ctx, sectorID, nil)
}

// SystemsBySectorID is GetSystemsBySectorID within tx
func (s *Service) SystemsBySectorID(ctx context.Context, sectorID int64, tx *database.Tx) ([]StarSystem, error) {
	return s.repo.GetSystemsBySectorID(ctx, sectorID, tx)
}

// ListSystems pages through every stored system
func (s *Service) ListSystems(ctx context.Context, limit, offset int) ([]StarSystem, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		return nil, errors.Validationf("limit must not exceed %d", MaxListLimit)
	}
	if offset < 0 {
		return nil, errors.Validation("offset must not be negative")
	}

	return s.repo.List(ctx, limit, offset, nil)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx, nil)
}

// IDsBySectorID returns the ids of the systems directly under sectorID
func (s *Service) IDsBySectorID(ctx context.Context, sectorID int64, tx *database.Tx) ([]int64, error) {
	return s.repo.IDsBySectorID(ctx, sectorID, tx)
}

// DeleteSystems removes the system rows only; links and registry entries are the caller's concern
func (s *Service) DeleteSystems(ctx context.Context, ids []int64, tx *database.Tx) (int64, error) {
	return s.repo.DeleteByIDs(ctx, ids, tx)
}
