package link

import (
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"galaxy-server/internal/galaxyobject"
)

// maxPrealloc caps the initial capacity of the link slice. Larger results
// grow by appending.
const maxPrealloc = 1 << 16

// WeightedHandle is a generator input node
type WeightedHandle struct {
	Handle galaxyobject.Handle
	Weight uint32
}

// Result is the outcome of one generation pass. Exhausted is set when the
// attempt budget ran out before Requested links were produced; Links then
// holds everything built so far.
type Result struct {
	Links     []Link
	Requested int
	Exhausted bool
}

// Generator builds connected random link graphs over sibling sets.
// It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// Weigh attaches fresh exponential weights to handles
func (g *Generator) Weigh(handles []galaxyobject.Handle) []WeightedHandle {
	g.mu.Lock()
	defer g.mu.Unlock()

	weights := ExpWeights(g.rng, len(handles))
	nodes := make([]WeightedHandle, len(handles))
	for i, handle := range handles {
		nodes[i] = WeightedHandle{Handle: handle, Weight: weights[i]}
	}
	return nodes
}

// Generate links nodes into a connected graph and then adds weighted random
// links until target is reached.
//
// A shuffled chain of len(nodes)-1 links comes first, so the graph is always
// connected. With unique set, loops and duplicate pairs are rejected, and the
// goal is raised to the number of distinct pairs when target is below it.
// Sampling stops once every pair is used. Without unique, loops and
// duplicates are kept. At most remaining² draws are attempted.
func (g *Generator) Generate(nodes []WeightedHandle, target int, unique bool) Result {
	if len(nodes) == 0 {
		return Result{Links: []Link{}}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	shuffled := make([]WeightedHandle, len(nodes))
	copy(shuffled, nodes)
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := len(shuffled)
	remaining := Remaining(n, target, unique)
	result := Result{Requested: n - 1 + remaining}

	links := make([]Link, 0, min(result.Requested, maxPrealloc))
	seen := make(map[Key]struct{})

	for i := 1; i < n; i++ {
		l := New(shuffled[i-1].Handle, shuffled[i].Handle)
		links = append(links, l)
		if unique {
			seen[l.Key()] = struct{}{}
		}
	}

	pairs := n * (n - 1) / 2
	pick := g.picker(shuffled)
	budget := AttemptBudget(remaining)
	added := 0
	for attempts := 0; added < remaining && attempts < budget; attempts++ {
		if unique && len(seen) == pairs {
			break
		}

		a := pick()
		b := pick()

		l := New(a, b)
		if unique {
			if l.IsLoop() {
				continue
			}
			if _, ok := seen[l.Key()]; ok {
				continue
			}
			seen[l.Key()] = struct{}{}
		}

		links = append(links, l)
		added++
	}

	result.Links = links
	result.Exhausted = added < remaining
	return result
}

// Remaining returns how many links the sampling pass must add after the
// connectivity chain over n nodes
func Remaining(n, target int, unique bool) int {
	if n <= 0 {
		return 0
	}

	goal := target
	if unique {
		goal = max(target, n*(n-1)/2)
	}
	return max(goal-(n-1), 0)
}

// AttemptBudget is remaining², saturating at math.MaxInt
func AttemptBudget(remaining int) int {
	if remaining <= 0 {
		return 0
	}
	if remaining > math.MaxInt/remaining {
		return math.MaxInt
	}
	return remaining * remaining
}

// picker returns a weighted random choice over nodes. Must be called with g.mu held.
func (g *Generator) picker(nodes []WeightedHandle) func() galaxyobject.Handle {
	cumulative := make([]uint64, len(nodes))
	var total uint64
	for i, node := range nodes {
		total += uint64(node.Weight)
		cumulative[i] = total
	}

	if total == 0 {
		return func() galaxyobject.Handle {
			return nodes[g.rng.IntN(len(nodes))].Handle
		}
	}

	return func() galaxyobject.Handle {
		r := g.rng.Uint64N(total)
		idx := sort.Search(len(cumulative), func(i int) bool {
			return cumulative[i] > r
		})
		return nodes[idx].Handle
	}
}
