package galaxy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"galaxy-server/internal/sector"
	"galaxy-server/internal/shared/cache"
	"galaxy-server/internal/shared/errors"
)

const (
	cachePrefix = "galaxy:"
	statsKey    = cachePrefix + "stats"

	progressEvery = 100
)

type Service struct {
	repo    *Repository
	sectors *sector.Service
	cache   cache.Cache
	logger  *slog.Logger
}

func NewService(repo *Repository, sectors *sector.Service, cache cache.Cache, logger *slog.Logger) *Service {
	logger.Debug("Initializing galaxy service")

	return &Service{
		repo:    repo,
		sectors: sectors,
		cache:   cache,
		logger:  logger,
	}
}

// Generate expands a root sector and keeps fulfilling futures until none are
// left. Each fulfillment commits on its own, so a failed run can be resumed
// from the root id carried in the error.
func (s *Service) Generate(ctx context.Context, radius, stars float64) (*Report, error) {
	logger := s.logger.With("component", "galaxy_service", "operation", "generate", "radius", radius, "stars", stars)
	logger.Info("Generating galaxy")

	start := time.Now()
	defer s.invalidate(ctx)

	root, err := s.sectors.Expand(ctx, stars, radius, nil)
	if err != nil {
		logger.Error("Failed to expand root sector", "error", err)
		return nil, err
	}

	report := &Report{RootID: root.Sector.ID}
	report.add(root)

	if err := s.drain(ctx, futureIDs(root.Futures), report); err != nil {
		logger.Error("Galaxy generation stopped", "error", err, "root_id", report.RootID, "pending_futures", report.PendingFutures)
		return nil, errors.Wrap(fmt.Sprintf("generation of sector %d stopped with %d futures pending", report.RootID, report.PendingFutures), err)
	}

	report.Duration = time.Since(start)
	logger.Info("Galaxy generated",
		"root_id", report.RootID,
		"sectors", report.Sectors,
		"systems", report.Systems,
		"links", report.Links,
		"exhausted_batches", report.ExhaustedBatches,
		"duration", report.Duration,
	)
	return report, nil
}

// Resume fulfills every future left anywhere under sectorID
func (s *Service) Resume(ctx context.Context, sectorID int64) (*Report, error) {
	logger := s.logger.With("component", "galaxy_service", "operation", "resume", "sector_id", sectorID)
	logger.Info("Resuming generation")

	start := time.Now()
	defer s.invalidate(ctx)

	if _, err := s.sectors.GetSector(ctx, sectorID); err != nil {
		return nil, err
	}

	var pending []int64
	stack := []int64{sectorID}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		futures, err := s.sectors.ChildFutures(ctx, id)
		if err != nil {
			return nil, err
		}
		pending = append(pending, futureIDs(futures)...)

		children, err := s.sectors.ChildSectors(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			stack = append(stack, c.ID)
		}
	}

	logger.Debug("Pending futures collected", "count", len(pending))

	report := &Report{RootID: sectorID}
	if err := s.drain(ctx, pending, report); err != nil {
		logger.Error("Resumed generation stopped", "error", err, "pending_futures", report.PendingFutures)
		return nil, errors.Wrap(fmt.Sprintf("generation of sector %d stopped with %d futures pending", sectorID, report.PendingFutures), err)
	}

	report.Duration = time.Since(start)
	logger.Info("Generation resumed to completion",
		"sectors", report.Sectors,
		"systems", report.Systems,
		"links", report.Links,
		"duration", report.Duration,
	)
	return report, nil
}

// drain fulfills pending futures depth first until none remain
func (s *Service) drain(ctx context.Context, pending []int64, report *Report) error {
	stack := append([]int64(nil), pending...)
	fulfilled := 0

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			report.PendingFutures = len(stack)
			return err
		}

		id := stack[len(stack)-1]

		expansion, err := s.sectors.Fulfill(ctx, id)
		if err != nil {
			report.PendingFutures = len(stack)
			return err
		}
		stack = stack[:len(stack)-1]

		report.add(expansion)
		stack = append(stack, futureIDs(expansion.Futures)...)

		fulfilled++
		if fulfilled%progressEvery == 0 {
			s.logger.Info("Generation progress",
				"root_id", report.RootID,
				"fulfilled", fulfilled,
				"pending", len(stack),
				"systems", report.Systems,
			)
		}
	}

	report.PendingFutures = 0
	return nil
}

func (s *Service) Expand(ctx context.Context, req ExpandRequest) (*sector.Expansion, error) {
	defer s.invalidate(ctx)
	return s.sectors.Expand(ctx, req.Stars, req.Radius, req.ParentID)
}

func (s *Service) Fulfill(ctx context.Context, futureID int64) (*sector.Expansion, error) {
	defer s.invalidate(ctx)
	return s.sectors.Fulfill(ctx, futureID)
}

func (s *Service) CreateFuture(ctx context.Context, parentID int64, req FutureRequest) (*sector.Future, error) {
	defer s.invalidate(ctx)
	return s.sectors.CreateFuture(ctx, parentID, req.Stars, req.Radius)
}

func (s *Service) DeleteSector(ctx context.Context, sectorID int64) (*sector.Deletion, error) {
	defer s.invalidate(ctx)
	return s.sectors.Delete(ctx, sectorID)
}

// Stats returns object counts, served from cache until the next mutation
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	logger := s.logger.With("component", "galaxy_service", "operation", "stats")

	var stats Stats
	found, err := cache.GetJSON(ctx, s.cache, statsKey, &stats)
	if err != nil {
		logger.Warn("Failed to read stats from cache", "error", err)
	}
	if found {
		logger.Debug("Stats served from cache")
		return &stats, nil
	}

	fresh, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, s.cache, statsKey, fresh); err != nil {
		logger.Warn("Failed to cache stats", "error", err)
	}
	return fresh, nil
}

// Roots lists root sectors, cached per page
func (s *Service) Roots(ctx context.Context, limit, offset int) ([]sector.Sector, error) {
	logger := s.logger.With("component", "galaxy_service", "operation", "roots", "limit", limit, "offset", offset)
	key := fmt.Sprintf("%sroots:%d:%d", cachePrefix, limit, offset)

	var roots []sector.Sector
	found, err := cache.GetJSON(ctx, s.cache, key, &roots)
	if err != nil {
		logger.Warn("Failed to read roots from cache", "error", err)
	}
	if found {
		return roots, nil
	}

	roots, err = s.sectors.ListRoots(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, s.cache, key, roots); err != nil {
		logger.Warn("Failed to cache roots", "error", err)
	}
	return roots, nil
}

func (s *Service) invalidate(ctx context.Context) {
	// Cleared even when the request context is already done.
	if err := s.cache.DeletePrefix(context.WithoutCancel(ctx), cachePrefix); err != nil {
		s.logger.Warn("Failed to invalidate galaxy cache", "error", err)
	}
}

func futureIDs(futures []sector.Future) []int64 {
	ids := make([]int64, len(futures))
	for i, f := range futures {
		ids[i] = f.ID
	}
	return ids
}
