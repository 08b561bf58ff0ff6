package sector_test

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"galaxy-server/internal/galaxyobject"
	"galaxy-server/internal/link"
	"galaxy-server/internal/sector"
	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/database"
	"galaxy-server/internal/shared/database/dbtest"
	"galaxy-server/internal/shared/errors"
	"galaxy-server/internal/shared/logger"
	"galaxy-server/internal/system"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	db      *database.DB
	svc     *sector.Service
	objects *galaxyobject.Repository
	links   *link.Repository
	systems *system.Service
}

func newHarness(t *testing.T, cfg config.GenerationConfig) *harness {
	t.Helper()

	db := dbtest.New(t)
	log := logger.Discard()
	rng := rand.New(rand.NewPCG(7, 11))

	objects := galaxyobject.NewRepository(db, log)
	links := link.NewRepository(db, log)
	systems := system.NewService(system.NewRepository(db, log), objects, system.NewNamer(cfg.StarNames, rng), log)
	svc := sector.NewService(db, sector.NewRepository(db, log), objects, links, systems, link.NewGenerator(rng), cfg, log)

	return &harness{db: db, svc: svc, objects: objects, links: links, systems: systems}
}

func (h *harness) counts(t *testing.T) (objects, links int) {
	t.Helper()

	objects, err := h.objects.Count(context.Background(), nil)
	require.NoError(t, err)
	links, err = h.links.Count(context.Background(), nil)
	require.NoError(t, err)
	return objects, links
}

func idSet(handles ...[]int64) map[int64]bool {
	set := make(map[int64]bool)
	for _, ids := range handles {
		for _, id := range ids {
			set[id] = true
		}
	}
	return set
}

func futureIDs(futures []sector.Future) []int64 {
	ids := make([]int64, len(futures))
	for i, f := range futures {
		ids[i] = f.ID
	}
	return ids
}

func TestExpandSmallRegionCreatesSystems(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())
	ctx := context.Background()

	for _, stars := range []float64{5, 5.4, 99} {
		expansion, err := h.svc.Expand(ctx, stars, 10, nil)
		require.NoError(t, err)

		want := int(math.Round(stars))
		assert.Equal(t, want, expansion.Systems)
		assert.Empty(t, expansion.Futures)

		systems, err := h.systems.GetSystemsBySectorID(ctx, expansion.Sector.ID)
		require.NoError(t, err)
		require.Len(t, systems, want)

		members := make(map[int64]bool)
		for _, s := range systems {
			members[s.ID] = true
		}

		detail, err := h.svc.Detail(ctx, expansion.Sector.ID)
		require.NoError(t, err)
		assert.Len(t, detail.Links, expansion.Links)
		assert.LessOrEqual(t, expansion.Links, want*(want-1)/2)
		// Systems are linked towards a complete graph even when the star target is lower
		assert.Equal(t, max(int(stars*4), want*(want-1)/2), expansion.LinksRequested)
		assert.Equal(t, expansion.Links < expansion.LinksRequested, expansion.LinksExhausted)
		if want == 5 {
			assert.True(t, expansion.LinksExhausted, "five systems cannot hold %d distinct links", expansion.LinksRequested)
		}

		seen := make(map[link.Key]bool)
		for _, l := range detail.Links {
			assert.True(t, members[l.A.ID] && members[l.B.ID], "link %v leaves the batch", l)
			assert.Equal(t, galaxyobject.KindSystem, l.A.Kind)
			assert.False(t, l.IsLoop())
			assert.False(t, seen[l.Key()], "duplicate link %v", l)
			seen[l.Key()] = true
		}
	}
}

func TestExpandLargeRegionCreatesFutures(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())
	ctx := context.Background()

	expansion, err := h.svc.Expand(ctx, 200, 100, nil)
	require.NoError(t, err)

	assert.Zero(t, expansion.Systems)
	require.Len(t, expansion.Futures, 10)
	assert.Nil(t, expansion.Sector.ParentID)

	for _, f := range expansion.Futures {
		assert.Equal(t, expansion.Sector.ID, f.ParentID)
		assert.InDelta(t, 20, f.Stars, 1e-9)
		assert.InDelta(t, 100/math.Cbrt(10), f.Radius, 1e-9)

		stored, err := h.svc.GetFuture(ctx, f.ID)
		require.NoError(t, err)
		assert.Equal(t, f, *stored)
	}

	assert.Equal(t, 800, expansion.Links)
	assert.False(t, expansion.LinksExhausted)

	members := idSet(futureIDs(expansion.Futures))
	detail, err := h.svc.Detail(ctx, expansion.Sector.ID)
	require.NoError(t, err)
	require.Len(t, detail.Links, 800)
	for _, l := range detail.Links {
		assert.True(t, members[l.A.ID] && members[l.B.ID], "link %v leaves the batch", l)
		assert.Equal(t, galaxyobject.KindSectorFuture, l.A.Kind)
	}
}

func TestExpandEmptyRegion(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())

	expansion, err := h.svc.Expand(context.Background(), 0.3, 1, nil)
	require.NoError(t, err)
	assert.Zero(t, expansion.Systems)
	assert.Zero(t, expansion.Links)

	objects, links := h.counts(t)
	assert.Equal(t, 1, objects)
	assert.Zero(t, links)
}

func TestExpandValidation(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())
	ctx := context.Background()

	for _, tc := range []struct{ stars, radius float64 }{
		{-1, 10},
		{math.NaN(), 10},
		{math.Inf(1), 10},
		{10, 0},
		{10, -3},
		{sector.MaxStars + 1, 10},
		{1e17, 1},
	} {
		_, err := h.svc.Expand(ctx, tc.stars, tc.radius, nil)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation), "stars=%v radius=%v", tc.stars, tc.radius)
	}

	objects, links := h.counts(t)
	assert.Zero(t, objects)
	assert.Zero(t, links)
}

func TestCreateFutureRejectsOversizedRegion(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())
	ctx := context.Background()

	root, err := h.svc.Expand(ctx, 3, 1, nil)
	require.NoError(t, err)

	_, err = h.svc.CreateFuture(ctx, root.Sector.ID, 1e17, 1)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Empty(t, mustChildFutures(t, h, root.Sector.ID))
}

func mustChildFutures(t *testing.T, h *harness, sectorID int64) []sector.Future {
	t.Helper()
	futures, err := h.svc.ChildFutures(context.Background(), sectorID)
	require.NoError(t, err)
	return futures
}

func TestExpandUnknownParentRollsBack(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())

	missing := int64(4242)
	_, err := h.svc.Expand(context.Background(), 200, 10, &missing)

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConstraint))

	objects, links := h.counts(t)
	assert.Zero(t, objects)
	assert.Zero(t, links)
}

func TestExpandUnderParent(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())
	ctx := context.Background()

	root, err := h.svc.Expand(ctx, 3, 10, nil)
	require.NoError(t, err)

	parentID := root.Sector.ID
	child, err := h.svc.Expand(ctx, 4, 5, &parentID)
	require.NoError(t, err)
	require.NotNil(t, child.Sector.ParentID)
	assert.Equal(t, parentID, *child.Sector.ParentID)

	children, err := h.svc.ChildSectors(ctx, parentID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.Sector.ID, children[0].ID)

	roots, err := h.svc.ListRoots(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, parentID, roots[0].ID)
}

func TestFulfillMaterializesSector(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())
	ctx := context.Background()

	root, err := h.svc.Expand(ctx, 200, 100, nil)
	require.NoError(t, err)
	future := root.Futures[0]

	expansion, err := h.svc.Fulfill(ctx, future.ID)
	require.NoError(t, err)

	assert.Equal(t, future.ID, expansion.Sector.ID, "fulfillment reuses the future id")
	require.NotNil(t, expansion.Sector.ParentID)
	assert.Equal(t, root.Sector.ID, *expansion.Sector.ParentID)
	assert.Equal(t, 20, expansion.Systems)
	assert.Empty(t, expansion.Futures)

	handle, err := h.objects.Get(ctx, future.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, galaxyobject.KindSector, handle.Kind)

	_, err = h.svc.GetFuture(ctx, future.ID)
	assert.True(t, errors.IsNotFound(err))

	stale, err := h.links.ListForObjects(ctx, []int64{future.ID}, nil)
	require.NoError(t, err)
	assert.Empty(t, stale, "links into the former future are purged")
}

func TestFulfillTwiceIsNotFound(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())
	ctx := context.Background()

	root, err := h.svc.Expand(ctx, 200, 100, nil)
	require.NoError(t, err)

	_, err = h.svc.Fulfill(ctx, root.Futures[3].ID)
	require.NoError(t, err)

	before, linksBefore := h.counts(t)

	_, err = h.svc.Fulfill(ctx, root.Futures[3].ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	after, linksAfter := h.counts(t)
	assert.Equal(t, before, after)
	assert.Equal(t, linksBefore, linksAfter)
}

func TestFulfillUnknownIsNotFound(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())
	ctx := context.Background()

	_, err := h.svc.Fulfill(ctx, 31337)
	assert.True(t, errors.IsNotFound(err))

	root, err := h.svc.Expand(ctx, 5, 1, nil)
	require.NoError(t, err)

	_, err = h.svc.Fulfill(ctx, root.Sector.ID)
	assert.True(t, errors.IsNotFound(err), "a sector is not a future")
}

func TestCreateFutureThenFulfill(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())
	ctx := context.Background()

	root, err := h.svc.Expand(ctx, 2, 1, nil)
	require.NoError(t, err)

	future, err := h.svc.CreateFuture(ctx, root.Sector.ID, 12, 3)
	require.NoError(t, err)

	futures, err := h.svc.ChildFutures(ctx, root.Sector.ID)
	require.NoError(t, err)
	require.Len(t, futures, 1)
	assert.Equal(t, *future, futures[0])

	expansion, err := h.svc.Fulfill(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, expansion.Systems)

	_, err = h.svc.CreateFuture(ctx, 999999, 12, 3)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConstraint))
}

func TestRoundTripConservesCounts(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())
	ctx := context.Background()

	// An unrelated root that must survive untouched.
	_, err := h.svc.Expand(ctx, 7, 1, nil)
	require.NoError(t, err)

	objectsBefore, linksBefore := h.counts(t)

	root, err := h.svc.Expand(ctx, 200, 100, nil)
	require.NoError(t, err)

	for _, f := range root.Futures[:4] {
		_, err := h.svc.Fulfill(ctx, f.ID)
		require.NoError(t, err)
	}

	deletion, err := h.svc.Delete(ctx, root.Sector.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), deletion.Sectors)
	assert.Equal(t, int64(6), deletion.Futures)
	assert.Equal(t, int64(80), deletion.Systems)

	objectsAfter, linksAfter := h.counts(t)
	assert.Equal(t, objectsBefore, objectsAfter)
	assert.Equal(t, linksBefore, linksAfter)

	assert.Equal(t, 1, dbtest.Count(t, h.db, "star_sectors"))
	assert.Zero(t, dbtest.Count(t, h.db, "star_sector_futures"))
	assert.Equal(t, 7, dbtest.Count(t, h.db, "star_systems"))
}

func TestDeleteLeavesSiblingIntact(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())
	ctx := context.Background()

	root, err := h.svc.Expand(ctx, 200, 100, nil)
	require.NoError(t, err)

	a, err := h.svc.Fulfill(ctx, root.Futures[0].ID)
	require.NoError(t, err)
	b, err := h.svc.Fulfill(ctx, root.Futures[1].ID)
	require.NoError(t, err)

	before, err := h.svc.Detail(ctx, b.Sector.ID)
	require.NoError(t, err)

	_, err = h.svc.Delete(ctx, a.Sector.ID)
	require.NoError(t, err)

	_, err = h.svc.GetSector(ctx, a.Sector.ID)
	assert.True(t, errors.IsNotFound(err))

	after, err := h.svc.Detail(ctx, b.Sector.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	parent, err := h.svc.Detail(ctx, root.Sector.ID)
	require.NoError(t, err)
	assert.Len(t, parent.Sectors, 1)
	assert.Len(t, parent.Futures, 8)
}

func TestDeleteDeepTree(t *testing.T) {
	cfg := config.DefaultGeneration()
	cfg.LinksPerStar = 0.01
	h := newHarness(t, cfg)
	ctx := context.Background()

	root, err := h.svc.Expand(ctx, 20000, 1000, nil)
	require.NoError(t, err)

	pending := futureIDs(root.Futures[:2])
	for depth := 0; len(pending) > 0 && depth < 3; depth++ {
		var next []int64
		for _, id := range pending {
			expansion, err := h.svc.Fulfill(ctx, id)
			require.NoError(t, err)
			next = append(next, futureIDs(expansion.Futures)...)
		}
		pending = next[:min(len(next), 2)]
	}

	assert.Greater(t, dbtest.Count(t, h.db, "star_systems"), 0)

	_, err = h.svc.Delete(ctx, root.Sector.ID)
	require.NoError(t, err)

	objects, links := h.counts(t)
	assert.Zero(t, objects)
	assert.Zero(t, links)
	for _, table := range []string{"star_sectors", "star_sector_futures", "star_systems"} {
		assert.Zero(t, dbtest.Count(t, h.db, table), table)
	}
}

func TestDeleteUnknownIsNotFound(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())

	_, err := h.svc.Delete(context.Background(), 777)
	assert.True(t, errors.IsNotFound(err))
}

func TestListRootsValidation(t *testing.T) {
	h := newHarness(t, config.DefaultGeneration())
	ctx := context.Background()

	_, err := h.svc.ListRoots(ctx, sector.MaxListLimit+1, 0)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	roots, err := h.svc.ListRoots(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, roots)
}
