package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	query := "SELECT id FROM star_links WHERE a_id IN (?, ?) OR b_id IN (?, ?)"

	assert.Equal(t, query, SQLite.Rebind(query))
	assert.Equal(t,
		"SELECT id FROM star_links WHERE a_id IN ($1, $2) OR b_id IN ($3, $4)",
		Postgres.Rebind(query),
	)
}

func TestForUpdate(t *testing.T) {
	assert.Equal(t, " FOR UPDATE", Postgres.ForUpdate())
	assert.Empty(t, SQLite.ForUpdate())
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", Placeholders(0))
	assert.Equal(t, "?", Placeholders(1))
	assert.Equal(t, "?, ?, ?", Placeholders(3))
}

func TestChunk(t *testing.T) {
	assert.Nil(t, Chunk(nil, 10))
	assert.Equal(t, [][]int64{{1, 2}}, Chunk([]int64{1, 2}, 10))
	assert.Equal(t, [][]int64{{1, 2}, {3, 4}, {5}}, Chunk([]int64{1, 2, 3, 4, 5}, 2))
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("postgres")
	assert.NoError(t, err)
	assert.Equal(t, Postgres, d)

	d, err = DialectFor("sqlite")
	assert.NoError(t, err)
	assert.Equal(t, SQLite, d)

	_, err = DialectFor("oracle")
	assert.Error(t, err)
}
