/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lspbroker.dev/lspbroker/internal/config"
)

func TestTable_DetectLanguage_MatchesBuiltinExtension(t *testing.T) {
	table := config.NewTable()

	cfg, ok := table.DetectLanguage("/home/me/proj/main.go")
	require.True(t, ok)
	assert.Equal(t, "go", cfg.Language)
	assert.Equal(t, "gopls", cfg.Command)
}

func TestTable_DetectLanguage_NoMatch(t *testing.T) {
	table := config.NewTable()

	_, ok := table.DetectLanguage("/home/me/proj/README.md")
	assert.False(t, ok)
}

func TestTable_SetOverlay_AppendsUnknownLanguage(t *testing.T) {
	table := config.NewTable()
	table.SetOverlay([]config.ServerConfig{{
		Language:       "zig2",
		FileExtensions: []string{".zig2"},
	}})

	cfg, ok := table.DetectLanguage("main.zig2")
	require.True(t, ok)
	assert.Equal(t, "zig2", cfg.Language)
}

// A languages.json entry that only extends extensions/grammar for an
// existing built-in language (spec.md §6: the file carries no LSP command
// at all) must not wipe out that built-in's Command/WorkspaceMarkers.
func TestTable_SetOverlay_PreservesBuiltinFieldsNotSetByOverlay(t *testing.T) {
	table := config.NewTable()
	table.SetOverlay([]config.ServerConfig{{
		Language:       "python",
		FileExtensions: []string{".py", ".pyi"},
	}})

	cfg, ok := table.DetectLanguage("main.pyi")
	require.True(t, ok)
	assert.Equal(t, "python", cfg.Language)
	assert.Equal(t, "pyright-langserver", cfg.Command, "overlay without a Command must not erase the built-in's")
	assert.Equal(t, []string{"pyproject.toml", "setup.py"}, cfg.WorkspaceMarkers)
}

func TestTable_SetOverlay_ReplacesFieldsOverlayDoesSet(t *testing.T) {
	table := config.NewTable()
	table.SetOverlay([]config.ServerConfig{{
		Language: "go",
		Command:  "gopls-fork",
		Args:     []string{"-debug"},
	}})

	cfg, ok := table.DetectLanguage("main.go")
	require.True(t, ok)
	assert.Equal(t, "gopls-fork", cfg.Command)
	assert.Equal(t, []string{"-debug"}, cfg.Args)
}
