package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lspbroker.dev/lspbroker/internal/platform"
)

func TestLoadUserLanguages_MissingConfigFileIsNotAnError(t *testing.T) {
	m := NewManager()
	fs := platform.NewMapFileSystem(nil)

	err := m.LoadUserLanguages(fs, "/home/user/.config/lspbroker/languages.json")
	require.NoError(t, err)
	assert.Empty(t, m.userLangs)
}

func TestLoadUserLanguages_EntryWithoutGrammarIsSkipped(t *testing.T) {
	m := NewManager()
	fs := platform.NewMapFileSystem(nil)
	fs.AddFile("/home/user/.config/lspbroker/languages.json",
		`{"dhall": {"extensions": [".dhall"]}}`, 0644)

	err := m.LoadUserLanguages(fs, "/home/user/.config/lspbroker/languages.json")
	require.NoError(t, err)
	assert.Empty(t, m.userLangs, "an entry with no grammar path registers no tree-sitter language")
}
