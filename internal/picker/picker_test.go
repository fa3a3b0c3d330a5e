package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPicker_FileQuery_EmptyQueryReturnsMRUOnly(t *testing.T) {
	p := &Picker{mru: newMRU([]string{"b.go", "a.go"})}
	matches := p.FileQuery("")
	require.Len(t, matches, 2)
	assert.Equal(t, "b.go", matches[0].Path)
	assert.Equal(t, "a.go", matches[1].Path)
}

func TestPicker_FileQuery_ScoresAndBoostsMRUEntries(t *testing.T) {
	p := &Picker{
		paths: []string{"cmd/main.go", "internal/main_test.go"},
		mru:   newMRU([]string{"internal/main_test.go"}),
	}
	matches := p.FileQuery("main")
	require.Len(t, matches, 2)
	assert.Equal(t, "internal/main_test.go", matches[0].Path, "MRU boost should outrank a non-MRU equally-scored match")
}

func TestPicker_FileQuery_NoMatchesReturnsEmpty(t *testing.T) {
	p := &Picker{
		paths: []string{"cmd/main.go"},
		mru:   newMRU(nil),
	}
	matches := p.FileQuery("zzzzz")
	assert.Empty(t, matches)
}

func TestPicker_Touch_InitializesMRUWhenNil(t *testing.T) {
	p := &Picker{}
	p.Touch("new.go")
	_, ok := p.mru.rank("new.go")
	assert.True(t, ok)
}

func TestPicker_Close_StopsNilScannerWithoutPanic(t *testing.T) {
	p := &Picker{}
	assert.NotPanics(t, func() { p.Close() })
}
