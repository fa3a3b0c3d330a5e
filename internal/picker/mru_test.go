package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMRU_Touch_MovesExistingPathToFront(t *testing.T) {
	m := newMRU([]string{"a.go", "b.go", "c.go"})
	m.touch("c.go")
	assert.Equal(t, []string{"c.go", "a.go", "b.go"}, m.list())
}

func TestMRU_Touch_InsertsNewPathAtFront(t *testing.T) {
	m := newMRU([]string{"a.go"})
	m.touch("b.go")
	assert.Equal(t, []string{"b.go", "a.go"}, m.list())
}

func TestMRU_Rank_ReportsPositionAndPresence(t *testing.T) {
	m := newMRU([]string{"a.go", "b.go"})
	rank, ok := m.rank("b.go")
	assert.True(t, ok)
	assert.Equal(t, 1, rank)

	_, ok = m.rank("missing.go")
	assert.False(t, ok)
}

func TestMRU_Touch_TrimsOverCapacity(t *testing.T) {
	seed := make([]string, mruCapacity)
	for i := range seed {
		seed[i] = string(rune('a' + i%26))
	}
	m := newMRU(seed)
	m.touch("new-file.go")
	assert.Len(t, m.list(), mruCapacity)
	assert.Equal(t, "new-file.go", m.list()[0])
}
