package system

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Namer hands out catalogue names with a numeric designation, e.g. "Vega-417"
type Namer struct {
	mu    sync.Mutex
	names []string
	rng   *rand.Rand
}

func NewNamer(names []string, rng *rand.Rand) *Namer {
	if len(names) == 0 {
		names = []string{"Star"}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Namer{names: names, rng: rng}
}

func (n *Namer) Next() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return fmt.Sprintf("%s-%d", n.names[n.rng.IntN(len(n.names))], 100+n.rng.IntN(900))
}

// Batch returns count names
func (n *Namer) Batch(count int) []string {
	names := make([]string, count)
	for i := range names {
		names[i] = n.Next()
	}
	return names
}
