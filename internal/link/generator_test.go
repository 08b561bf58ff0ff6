package link

import (
	"math"
	"math/rand/v2"
	"testing"

	"galaxy-server/internal/galaxyobject"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func uniform(handles []galaxyobject.Handle) []WeightedHandle {
	nodes := make([]WeightedHandle, len(handles))
	for i, h := range handles {
		nodes[i] = WeightedHandle{Handle: h, Weight: WeightBudget / uint32(len(handles))}
	}
	return nodes
}

func systems(n int) []galaxyobject.Handle {
	handles := make([]galaxyobject.Handle, n)
	for i := range handles {
		handles[i] = galaxyobject.Handle{ID: int64(i + 1), Kind: galaxyobject.KindSystem}
	}
	return handles
}

// connected reports whether links join every handle into one component
func connected(handles []galaxyobject.Handle, links []Link) bool {
	parent := make(map[galaxyobject.Handle]galaxyobject.Handle, len(handles))
	for _, h := range handles {
		parent[h] = h
	}

	var find func(galaxyobject.Handle) galaxyobject.Handle
	find = func(h galaxyobject.Handle) galaxyobject.Handle {
		for parent[h] != h {
			parent[h] = parent[parent[h]]
			h = parent[h]
		}
		return h
	}

	for _, l := range links {
		parent[find(l.A)] = find(l.B)
	}

	roots := make(map[galaxyobject.Handle]struct{})
	for _, h := range handles {
		roots[find(h)] = struct{}{}
	}
	return len(roots) <= 1
}

func TestGenerateTwoNodesZeroTarget(t *testing.T) {
	g := seeded(1)
	handles := systems(2)

	result := g.Generate(g.Weigh(handles), 0, false)

	require.Len(t, result.Links, 1)
	assert.True(t, result.Links[0].Equal(New(handles[0], handles[1])))
	assert.False(t, result.Exhausted)
}

func TestGenerateSingleNodeNonUniqueProducesLoops(t *testing.T) {
	g := seeded(2)
	handles := systems(1)

	result := g.Generate(g.Weigh(handles), 10, false)

	require.Len(t, result.Links, 10)
	for _, l := range result.Links {
		assert.True(t, l.IsLoop())
		assert.Equal(t, handles[0], l.A)
	}
	assert.False(t, result.Exhausted)
}

func TestGenerateSingleNodeUnique(t *testing.T) {
	g := seeded(3)

	// A single node has no distinct pair, so the target can never be met
	result := g.Generate(g.Weigh(systems(1)), 10, true)

	assert.Empty(t, result.Links)
	assert.Equal(t, 10, result.Requested)
	assert.True(t, result.Exhausted)
}

func TestGenerateEmptyInput(t *testing.T) {
	result := seeded(4).Generate(nil, 10, true)
	assert.Empty(t, result.Links)
}

func TestGenerateAlwaysConnected(t *testing.T) {
	g := seeded(5)

	for n := 1; n <= 40; n++ {
		for _, unique := range []bool{true, false} {
			handles := systems(n)
			result := g.Generate(g.Weigh(handles), 0, unique)

			assert.Len(t, result.Links, max(n-1, 0))
			assert.True(t, connected(handles, result.Links), "n=%d unique=%v", n, unique)
		}
	}
}

func TestGenerateUniqueHasNoLoopsOrDuplicates(t *testing.T) {
	g := seeded(6)

	for _, n := range []int{2, 3, 5, 12, 40} {
		handles := systems(n)
		result := g.Generate(g.Weigh(handles), n*4, true)

		seen := make(map[Key]struct{})
		for _, l := range result.Links {
			assert.False(t, l.IsLoop(), "n=%d produced loop %v", n, l)
			_, dup := seen[l.Key()]
			assert.False(t, dup, "n=%d produced duplicate %v", n, l)
			seen[l.Key()] = struct{}{}
		}

		assert.LessOrEqual(t, len(result.Links), n*(n-1)/2)
		assert.LessOrEqual(t, len(result.Links), result.Requested)
		assert.Equal(t, len(result.Links) < result.Requested, result.Exhausted)
		assert.True(t, connected(handles, result.Links))
	}
}

func TestGenerateNonUniqueReachesTarget(t *testing.T) {
	g := seeded(7)
	handles := systems(10)

	result := g.Generate(g.Weigh(handles), 800, false)

	assert.Len(t, result.Links, 800)
	assert.Equal(t, 800, result.Requested)
	assert.False(t, result.Exhausted)
	assert.True(t, connected(handles, result.Links))
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	handles := systems(30)

	a := seeded(42)
	b := seeded(42)

	assert.Equal(t,
		a.Generate(a.Weigh(handles), 120, true),
		b.Generate(b.Weigh(handles), 120, true),
	)
}

func TestGenerateFollowsWeights(t *testing.T) {
	g := seeded(8)
	handles := systems(6)

	nodes := make([]WeightedHandle, len(handles))
	for i, h := range handles {
		nodes[i] = WeightedHandle{Handle: h}
	}
	nodes[3].Weight = WeightBudget

	result := g.Generate(nodes, 50, false)

	require.Len(t, result.Links, 50)
	for _, l := range result.Links[len(handles)-1:] {
		assert.Equal(t, handles[3], l.A)
		assert.Equal(t, handles[3], l.B)
	}
}

func TestGenerateBudgetExhaustion(t *testing.T) {
	g := seeded(9)
	handles := systems(3)

	// Three nodes allow three distinct pairs. A hub taking all weight can only
	// ever draw loops, so the single remaining link is never found.
	nodes := []WeightedHandle{
		{Handle: handles[0], Weight: WeightBudget},
		{Handle: handles[1]},
		{Handle: handles[2]},
	}

	result := g.Generate(nodes, 3, true)

	assert.Len(t, result.Links, 2)
	assert.Equal(t, 3, result.Requested)
	assert.True(t, result.Exhausted)
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, 0, Remaining(0, 10, false))
	assert.Equal(t, 0, Remaining(2, 0, false))
	assert.Equal(t, 10, Remaining(1, 10, false))
	assert.Equal(t, 10, Remaining(1, 10, true))
	assert.Equal(t, 16, Remaining(5, 20, true))
	assert.Equal(t, 16, Remaining(5, 20, false))
	assert.Equal(t, 296, Remaining(5, 300, false))
	assert.Equal(t, 36, Remaining(10, 19, true))
	assert.Equal(t, 10, Remaining(10, 19, false))
	assert.Equal(t, 1176, Remaining(50, 200, true))
}

func TestGenerateUniqueBelowPairCountBuildsCompleteGraph(t *testing.T) {
	g := seeded(10)
	handles := systems(10)

	result := g.Generate(uniform(handles), 19, true)

	assert.Equal(t, 45, result.Requested)
	assert.Len(t, result.Links, 45)
	assert.False(t, result.Exhausted)
}

func TestGenerateUniqueAbovePairCountIsExhausted(t *testing.T) {
	g := seeded(11)
	handles := systems(5)

	result := g.Generate(uniform(handles), 20, true)

	assert.Equal(t, 20, result.Requested)
	assert.Len(t, result.Links, 10)
	assert.True(t, result.Exhausted)
}

func TestGenerateHugeTargetDoesNotPreallocate(t *testing.T) {
	g := seeded(12)
	handles := systems(2)

	// remaining² overflows int here; the only distinct pair comes from the chain
	result := g.Generate(g.Weigh(handles), 1<<62, true)

	assert.Len(t, result.Links, 1)
	assert.Equal(t, 1<<62, result.Requested)
	assert.True(t, result.Exhausted)
}

func TestAttemptBudget(t *testing.T) {
	assert.Equal(t, 0, AttemptBudget(0))
	assert.Equal(t, 0, AttemptBudget(-3))
	assert.Equal(t, 9, AttemptBudget(3))
	assert.Equal(t, 1_000_000_000_000, AttemptBudget(1_000_000))
	assert.Equal(t, math.MaxInt, AttemptBudget(4_000_000_000))
	assert.Equal(t, math.MaxInt, AttemptBudget(Remaining(10, 4_000_000_009, false)))
}

func TestExpWeights(t *testing.T) {
	rng := rand.New(rand.NewPCG(10, 11))

	assert.Empty(t, ExpWeights(rng, 0))

	for _, n := range []int{1, 2, 10, 99} {
		weights := ExpWeights(rng, n)
		require.Len(t, weights, n)

		var sum uint64
		for _, w := range weights {
			sum += uint64(w)
		}
		assert.LessOrEqual(t, sum, uint64(WeightBudget))
		assert.GreaterOrEqual(t, sum, uint64(WeightBudget-n))
	}
}
