package link

import (
	"testing"

	"galaxy-server/internal/galaxyobject"

	"github.com/stretchr/testify/assert"
)

func TestLinkIsOrientationIndependent(t *testing.T) {
	a := galaxyobject.Handle{ID: 7, Kind: galaxyobject.KindSectorFuture}
	b := galaxyobject.Handle{ID: 3, Kind: galaxyobject.KindSectorFuture}

	ab := New(a, b)
	ba := New(b, a)

	assert.Equal(t, ab, ba)
	assert.True(t, ab.Equal(ba))
	assert.Equal(t, ab.Key(), ba.Key())
	assert.Equal(t, b, ab.A, "lower id comes first")

	set := map[Key]int{ab.Key(): 1}
	set[ba.Key()]++
	assert.Len(t, set, 1)
}

func TestLinkEqualIgnoresRowID(t *testing.T) {
	a := galaxyobject.Handle{ID: 1, Kind: galaxyobject.KindSystem}
	b := galaxyobject.Handle{ID: 2, Kind: galaxyobject.KindSystem}

	stored := Link{ID: 99, A: b, B: a}
	assert.True(t, stored.Equal(New(a, b)))
}

func TestLinkLoopAndTouches(t *testing.T) {
	x := galaxyobject.Handle{ID: 5, Kind: galaxyobject.KindSystem}
	y := galaxyobject.Handle{ID: 6, Kind: galaxyobject.KindSystem}

	assert.True(t, New(x, x).IsLoop())
	assert.False(t, New(x, y).IsLoop())
	assert.True(t, New(x, y).Touches(6))
	assert.False(t, New(x, y).Touches(7))
}
