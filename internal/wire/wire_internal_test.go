package wire

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitRandGivesDistinctSources(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	namer, links := splitRand(rng)

	assert.NotSame(t, namer, links)
	assert.Same(t, rng, links)
	assert.NotEqual(t, namer.Uint64(), links.Uint64())
}

func TestSplitRandIsDeterministic(t *testing.T) {
	a, _ := splitRand(rand.New(rand.NewPCG(7, 9)))
	b, _ := splitRand(rand.New(rand.NewPCG(7, 9)))

	assert.Equal(t, a.Uint64(), b.Uint64())
}

func TestSplitRandNil(t *testing.T) {
	namer, links := splitRand(nil)

	assert.Nil(t, namer)
	assert.Nil(t, links)
}
