package sector

import (
	"context"
	"log/slog"
	"math"
	"slices"

	"galaxy-server/internal/galaxyobject"
	"galaxy-server/internal/link"
	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/database"
	"galaxy-server/internal/shared/errors"
	"galaxy-server/internal/system"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000

	// MaxStars bounds a single region. Sectors above the threshold get
	// stars*LinksPerStar links among their futures, all built in memory.
	MaxStars = 1_000_000
)

type Service struct {
	db        *database.DB
	repo      *Repository
	objects   *galaxyobject.Repository
	links     *link.Repository
	systems   *system.Service
	generator *link.Generator
	cfg       config.GenerationConfig
	logger    *slog.Logger
}

func NewService(
	db *database.DB,
	repo *Repository,
	objects *galaxyobject.Repository,
	links *link.Repository,
	systems *system.Service,
	generator *link.Generator,
	cfg config.GenerationConfig,
	logger *slog.Logger,
) *Service {
	logger.Debug("Initializing sector service")

	return &Service{
		db:        db,
		repo:      repo,
		objects:   objects,
		links:     links,
		systems:   systems,
		generator: generator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Expand creates a sector under parent and fills it with systems or futures
// in one transaction. A nil parent creates a root sector.
func (s *Service) Expand(ctx context.Context, stars, radius float64, parent *int64) (*Expansion, error) {
	logger := s.logger.With("component", "sector_service", "operation", "expand", "stars", stars, "radius", radius)
	if parent != nil {
		logger = logger.With("parent_id", *parent)
	}

	if err := validateRegion(stars, radius); err != nil {
		return nil, err
	}

	logger.Debug("Expanding sector")

	var expansion *Expansion
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		ids, err := s.objects.CreateBatch(ctx, galaxyobject.KindSector, 1, tx)
		if err != nil {
			return err
		}

		sector, err := s.repo.CreateSector(ctx, ids[0], parent, tx)
		if err != nil {
			return err
		}

		expansion, err = s.fill(ctx, *sector, stars, radius, tx)
		return err
	})
	if err != nil {
		logger.Error("Failed to expand sector", "error", err)
		return nil, err
	}

	logger.Info("Sector expanded",
		"sector_id", expansion.Sector.ID,
		"systems", expansion.Systems,
		"futures", len(expansion.Futures),
		"links", expansion.Links,
	)
	return expansion, nil
}

// Fulfill turns a future into a sector reusing its id, then fills it. Fulfilling
// an id that is not currently a future is NotFound.
func (s *Service) Fulfill(ctx context.Context, futureID int64) (*Expansion, error) {
	logger := s.logger.With("component", "sector_service", "operation", "fulfill", "future_id", futureID)
	logger.Debug("Fulfilling sector future")

	var expansion *Expansion
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		future, err := s.repo.LockFuture(ctx, futureID, tx)
		if err != nil {
			return err
		}

		// Links into the future are purged, not carried over to the sector.
		if _, err := s.links.DeleteForObjects(ctx, []int64{future.ID}, tx); err != nil {
			return err
		}

		n, err := s.repo.DeleteFutures(ctx, []int64{future.ID}, tx)
		if err != nil {
			return err
		}
		if n != 1 {
			return errors.NotFoundf("sector future %d not found", future.ID)
		}

		if err := s.objects.UpdateKind(ctx, future.ID, galaxyobject.KindSectorFuture, galaxyobject.KindSector, tx); err != nil {
			return err
		}

		parentID := future.ParentID
		sector, err := s.repo.CreateSector(ctx, future.ID, &parentID, tx)
		if err != nil {
			return err
		}

		expansion, err = s.fill(ctx, *sector, future.Stars, future.Radius, tx)
		return err
	})
	if err != nil {
		if errors.IsNotFound(err) {
			logger.Warn("Sector future not found", "error", err)
		} else {
			logger.Error("Failed to fulfill sector future", "error", err)
		}
		return nil, err
	}

	logger.Info("Sector future fulfilled",
		"systems", expansion.Systems,
		"futures", len(expansion.Futures),
		"links", expansion.Links,
	)
	return expansion, nil
}

// fill populates sector with either systems or futures and links the new
// siblings. Systems are linked uniquely, futures are not.
func (s *Service) fill(ctx context.Context, sector Sector, stars, radius float64, tx *database.Tx) (*Expansion, error) {
	logger := s.logger.With("component", "sector_service", "operation", "fill", "sector_id", sector.ID, "stars", stars)

	expansion := &Expansion{Sector: sector, Futures: []Future{}}

	fanout := s.cfg.Fanout
	childStars := stars / float64(fanout)

	var handles []galaxyobject.Handle
	unique := false

	if childStars < s.cfg.Threshold {
		var err error
		handles, err = s.systems.GenerateSystems(ctx, sector.ID, int(math.Round(stars)), tx)
		if err != nil {
			return nil, err
		}
		expansion.Systems = len(handles)
		unique = true
	} else {
		ids, err := s.objects.CreateBatch(ctx, galaxyobject.KindSectorFuture, fanout, tx)
		if err != nil {
			return nil, err
		}

		childRadius := radius / math.Cbrt(float64(fanout))
		futures := make([]Future, len(ids))
		for i, id := range ids {
			futures[i] = Future{ID: id, ParentID: sector.ID, Stars: childStars, Radius: childRadius}
		}

		if err := s.repo.CreateFutures(ctx, futures, tx); err != nil {
			return nil, err
		}
		expansion.Futures = futures
		handles = galaxyobject.Handles(ids, galaxyobject.KindSectorFuture)
	}

	if len(handles) == 0 {
		logger.Debug("Sector left empty")
		return expansion, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := int(stars * s.cfg.LinksPerStar)
	result := s.generator.Generate(s.generator.Weigh(handles), target, unique)
	if result.Exhausted {
		logger.Warn("Link budget exhausted before reaching target",
			"requested", result.Requested,
			"generated", len(result.Links),
		)
	}

	n, err := s.links.InsertBatch(ctx, result.Links, tx)
	if err != nil {
		return nil, err
	}

	expansion.Links = n
	expansion.LinksRequested = result.Requested
	expansion.LinksExhausted = result.Exhausted

	logger.Debug("Sector filled", "children", len(handles), "links", n, "unique", unique)
	return expansion, nil
}

// CreateFuture registers a standalone future under an existing sector
func (s *Service) CreateFuture(ctx context.Context, parentID int64, stars, radius float64) (*Future, error) {
	logger := s.logger.With("component", "sector_service", "operation", "create_future", "parent_id", parentID)

	if err := validateRegion(stars, radius); err != nil {
		return nil, err
	}

	var future *Future
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		ids, err := s.objects.CreateBatch(ctx, galaxyobject.KindSectorFuture, 1, tx)
		if err != nil {
			return err
		}

		future = &Future{ID: ids[0], ParentID: parentID, Stars: stars, Radius: radius}
		return s.repo.CreateFutures(ctx, []Future{*future}, tx)
	})
	if err != nil {
		logger.Error("Failed to create sector future", "error", err)
		return nil, err
	}

	logger.Info("Sector future created", "future_id", future.ID)
	return future, nil
}

// Delete removes sectorID and its whole subtree in one transaction. Child
// sectors are locked top-down, each once, then removed bottom-up.
func (s *Service) Delete(ctx context.Context, sectorID int64) (*Deletion, error) {
	logger := s.logger.With("component", "sector_service", "operation", "delete", "sector_id", sectorID)
	logger.Debug("Deleting sector")

	deletion := &Deletion{SectorID: sectorID}
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := s.repo.LockSector(ctx, sectorID, tx); err != nil {
			return err
		}

		order := []int64{sectorID}
		stack := []int64{sectorID}
		for len(stack) > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}

			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			children, err := s.repo.LockChildIDs(ctx, id, tx)
			if err != nil {
				return err
			}
			order = append(order, children...)
			stack = append(stack, children...)
		}

		slices.Reverse(order)
		for _, id := range order {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.deleteOne(ctx, id, deletion, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.IsNotFound(err) {
			logger.Warn("Sector not found", "error", err)
		} else {
			logger.Error("Failed to delete sector", "error", err)
		}
		return nil, err
	}

	logger.Info("Sector deleted",
		"sectors", deletion.Sectors,
		"futures", deletion.Futures,
		"systems", deletion.Systems,
		"links", deletion.Links,
	)
	return deletion, nil
}

// deleteOne removes a sector whose child sectors are already gone
func (s *Service) deleteOne(ctx context.Context, sectorID int64, deletion *Deletion, tx *database.Tx) error {
	futureIDs, err := s.repo.ChildFutureIDs(ctx, sectorID, tx)
	if err != nil {
		return err
	}
	if err := s.purge(ctx, futureIDs, deletion, tx, func(ids []int64) (int64, error) {
		n, err := s.repo.DeleteFutures(ctx, ids, tx)
		deletion.Futures += n
		return n, err
	}); err != nil {
		return err
	}

	systemIDs, err := s.systems.IDsBySectorID(ctx, sectorID, tx)
	if err != nil {
		return err
	}
	if err := s.purge(ctx, systemIDs, deletion, tx, func(ids []int64) (int64, error) {
		n, err := s.systems.DeleteSystems(ctx, ids, tx)
		deletion.Systems += n
		return n, err
	}); err != nil {
		return err
	}

	return s.purge(ctx, []int64{sectorID}, deletion, tx, func(ids []int64) (int64, error) {
		if err := s.repo.DeleteSector(ctx, ids[0], tx); err != nil {
			return 0, err
		}
		deletion.Sectors++
		return 1, nil
	})
}

// purge deletes the links touching ids, then the concrete rows, then the registry entries
func (s *Service) purge(ctx context.Context, ids []int64, deletion *Deletion, tx *database.Tx, deleteRows func([]int64) (int64, error)) error {
	if len(ids) == 0 {
		return nil
	}

	n, err := s.links.DeleteForObjects(ctx, ids, tx)
	if err != nil {
		return err
	}
	deletion.Links += n

	if _, err := deleteRows(ids); err != nil {
		return err
	}

	_, err = s.objects.DeleteByIDs(ctx, ids, tx)
	return err
}

func (s *Service) GetSector(ctx context.Context, id int64) (*Sector, error) {
	return s.repo.GetSector(ctx, id, nil)
}

func (s *Service) GetFuture(ctx context.Context, id int64) (*Future, error) {
	return s.repo.GetFuture(ctx, id, nil)
}

func (s *Service) ChildSectors(ctx context.Context, sectorID int64) ([]Sector, error) {
	return s.repo.GetChildSectors(ctx, sectorID, nil)
}

func (s *Service) ChildFutures(ctx context.Context, sectorID int64) ([]Future, error) {
	return s.repo.GetChildFutures(ctx, sectorID, nil)
}

func (s *Service) ListRoots(ctx context.Context, limit, offset int) ([]Sector, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		return nil, errors.Validationf("limit must not exceed %d", MaxListLimit)
	}
	if offset < 0 {
		return nil, errors.Validation("offset must not be negative")
	}

	return s.repo.ListRoots(ctx, limit, offset, nil)
}

// Detail reads a sector, its direct children and their links from one snapshot
func (s *Service) Detail(ctx context.Context, sectorID int64) (*Detail, error) {
	var detail *Detail
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		sector, err := s.repo.GetSector(ctx, sectorID, tx)
		if err != nil {
			return err
		}

		sectors, err := s.repo.GetChildSectors(ctx, sectorID, tx)
		if err != nil {
			return err
		}

		futures, err := s.repo.GetChildFutures(ctx, sectorID, tx)
		if err != nil {
			return err
		}

		systems, err := s.systems.SystemsBySectorID(ctx, sectorID, tx)
		if err != nil {
			return err
		}

		ids := []int64{sector.ID}
		for _, c := range sectors {
			ids = append(ids, c.ID)
		}
		for _, f := range futures {
			ids = append(ids, f.ID)
		}
		for _, st := range systems {
			ids = append(ids, st.ID)
		}

		links, err := s.links.ListForObjects(ctx, ids, tx)
		if err != nil {
			return err
		}
		if links == nil {
			links = []link.Link{}
		}

		detail = &Detail{
			Sector:  *sector,
			Sectors: sectors,
			Futures: futures,
			Systems: systems,
			Links:   links,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func validateRegion(stars, radius float64) error {
	if math.IsNaN(stars) || math.IsInf(stars, 0) || stars < 0 {
		return errors.Validation("stars must be a finite, non-negative number")
	}
	if stars > MaxStars {
		return errors.Validationf("stars must not exceed %d", MaxStars)
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius <= 0 {
		return errors.Validation("radius must be a finite, positive number")
	}
	return nil
}
