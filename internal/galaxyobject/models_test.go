package galaxyobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds {
		parsed, err := ParseKind(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseKind("planet")
	assert.Error(t, err)
}

func TestKindScan(t *testing.T) {
	var kind Kind
	require.NoError(t, kind.Scan([]byte("sector_future")))
	assert.Equal(t, KindSectorFuture, kind)

	assert.Error(t, kind.Scan(42))
	assert.Error(t, kind.Scan("nebula"))
}

func TestHandleLess(t *testing.T) {
	a := Handle{ID: 1, Kind: KindSystem}
	b := Handle{ID: 2, Kind: KindSector}

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.False(t, a.Less(a))
	assert.True(t, Handle{ID: 3, Kind: KindSector}.Less(Handle{ID: 3, Kind: KindSystem}))
}

func TestHandles(t *testing.T) {
	handles := Handles([]int64{4, 9}, KindSystem)
	assert.Equal(t, []Handle{{ID: 4, Kind: KindSystem}, {ID: 9, Kind: KindSystem}}, handles)
}
