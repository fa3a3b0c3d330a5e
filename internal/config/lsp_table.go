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

// Package config owns the daemon's LSP server table (spec.md §6), the
// optional user language overlay, and daemon-wide tunables.
package config

import "strings"

// ServerConfig describes one language server entry (spec.md §3 "LSP Server
// Config").
type ServerConfig struct {
	Language        string
	Command         string
	Args            []string
	LanguageID      string
	FileExtensions  []string
	WorkspaceMarkers []string
}

// MatchesExtension reports whether path ends with one of this server's
// configured extensions.
func (s ServerConfig) MatchesExtension(path string) bool {
	for _, ext := range s.FileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// builtin is the static table from spec.md §6 ("Built-in LSP configs").
// It is never mutated directly; Table wraps it with the user overlay.
var builtin = []ServerConfig{
	{
		Language:         "rust",
		Command:          "rust-analyzer",
		LanguageID:       "rust",
		FileExtensions:   []string{".rs"},
		WorkspaceMarkers: []string{"Cargo.toml"},
	},
	{
		Language:         "python",
		Command:          "pyright-langserver",
		Args:             []string{"--stdio"},
		LanguageID:       "python",
		FileExtensions:   []string{".py"},
		WorkspaceMarkers: []string{"pyproject.toml", "setup.py"},
	},
	{
		Language:         "typescript",
		Command:          "typescript-language-server",
		Args:             []string{"--stdio"},
		LanguageID:       "typescript",
		FileExtensions:   []string{".ts", ".tsx", ".js", ".jsx"},
		WorkspaceMarkers: []string{"package.json", "tsconfig.json"},
	},
	{
		Language:         "go",
		Command:          "gopls",
		LanguageID:       "go",
		FileExtensions:   []string{".go"},
		WorkspaceMarkers: []string{"go.mod"},
	},
	{
		Language:         "zig",
		Command:          "zls",
		LanguageID:       "zig",
		FileExtensions:   []string{".zig"},
		WorkspaceMarkers: []string{"build.zig"},
	},
	{
		Language:         "c",
		Command:          "clangd",
		LanguageID:       "c",
		FileExtensions:   []string{".c", ".h"},
		WorkspaceMarkers: []string{"compile_commands.json"},
	},
	{
		Language:         "cpp",
		Command:          "clangd",
		LanguageID:       "cpp",
		FileExtensions:   []string{".cpp", ".cc", ".hpp"},
		WorkspaceMarkers: []string{"compile_commands.json"},
	},
}

// BuiltinServers returns a copy of the built-in table.
func BuiltinServers() []ServerConfig {
	out := make([]ServerConfig, len(builtin))
	copy(out, builtin)
	return out
}
