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
package config

import (
	"sync"
)

// UserLanguage is one entry of $XDG_CONFIG_HOME/<name>/languages.json
// (spec.md §6 "User language config"). Grammar/QueriesDir feed the
// tree-sitter manager, not the LSP registry.
type UserLanguage struct {
	Extensions []string `json:"extensions" yaml:"extensions"`
	Grammar    string   `json:"grammar" yaml:"grammar"`
	QueriesDir string   `json:"queriesDir" yaml:"queriesDir"`
}

// Table is the mutable, overlay-aware view of the LSP server table. The
// daemon holds exactly one Table; fsnotify-driven reloads replace the
// overlay in place under the mutex.
type Table struct {
	mu      sync.RWMutex
	servers []ServerConfig
}

// NewTable returns a Table seeded with the built-in servers.
func NewTable() *Table {
	return &Table{servers: BuiltinServers()}
}

// SetOverlay replaces any previously-loaded user servers, keeping built-ins.
// A user entry whose Language matches a built-in is merged field-by-field —
// only the fields the overlay actually set (Command, Args, LanguageID,
// FileExtensions, WorkspaceMarkers when non-empty) replace the built-in's,
// so a languages.json entry that only
// extends FileExtensions/Grammar (spec.md §6 "User language config" carries
// no LSP command at all) can't silently wipe out a working built-in server.
// Unknown languages are appended as-is.
func (t *Table) SetOverlay(overlay []ServerConfig) {
	t.mu.Lock()
	defer t.mu.Unlock()

	merged := BuiltinServers()
	for _, ov := range overlay {
		replaced := false
		for i, s := range merged {
			if s.Language == ov.Language {
				merged[i] = mergeServerConfig(s, ov)
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, ov)
		}
	}
	t.servers = merged
}

// mergeServerConfig overlays non-empty fields of ov onto base, leaving base's
// value wherever ov left a field at its zero value.
func mergeServerConfig(base, ov ServerConfig) ServerConfig {
	out := base
	if ov.Command != "" {
		out.Command = ov.Command
	}
	if ov.Args != nil {
		out.Args = ov.Args
	}
	if ov.LanguageID != "" {
		out.LanguageID = ov.LanguageID
	}
	if ov.FileExtensions != nil {
		out.FileExtensions = ov.FileExtensions
	}
	if ov.WorkspaceMarkers != nil {
		out.WorkspaceMarkers = ov.WorkspaceMarkers
	}
	return out
}

// Servers returns a snapshot of the current table.
func (t *Table) Servers() []ServerConfig {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ServerConfig, len(t.servers))
	copy(out, t.servers)
	return out
}

// DetectLanguage implements spec.md §4.4 `detect_language(path) → lang?`:
// suffix match against the config table. Returns ("", false) if no server
// config claims the extension.
func (t *Table) DetectLanguage(path string) (ServerConfig, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, s := range t.servers {
		if s.MatchesExtension(path) {
			return s, true
		}
	}
	return ServerConfig{}, false
}
