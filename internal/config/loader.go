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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"lspbroker.dev/lspbroker/internal/logging"
	"lspbroker.dev/lspbroker/internal/platform"
)

// userLanguagesFile is the on-disk shape of languages.json (or its
// languages.yaml sibling): a map of language name to UserLanguage (spec.md
// §6).
type userLanguagesFile map[string]UserLanguage

// languagesSiblingPath swaps path's extension between .json and .yaml/.yml,
// used to fall back to a languages.yaml beside a languages.json that
// doesn't exist, mirroring the teacher's pnpm-workspace.yaml sibling-file
// convention (lsp/registry.go's parsePnpmWorkspace).
func languagesSiblingPath(path string) string {
	ext := filepath.Ext(path)
	switch ext {
	case ".yaml", ".yml":
		return strings.TrimSuffix(path, ext) + ".json"
	default:
		return strings.TrimSuffix(path, ext) + ".yaml"
	}
}

func parseLanguagesFile(path string, raw []byte) (userLanguagesFile, error) {
	var parsed userLanguagesFile
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &parsed); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		stripped := jsonc.ToJSON(raw)
		if err := json.Unmarshal(stripped, &parsed); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return parsed, nil
}

// readLanguagesFile reads path, falling back to its .json/.yaml sibling if
// path itself doesn't exist. A missing file (and missing sibling) is not an
// error — it simply yields no entries.
func readLanguagesFile(fs platform.FileSystem, path string) (userLanguagesFile, string, error) {
	raw, err := fs.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, "", fmt.Errorf("reading %s: %w", path, err)
		}
		sibling := languagesSiblingPath(path)
		raw, err = fs.ReadFile(sibling)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, "", nil
			}
			return nil, "", fmt.Errorf("reading %s: %w", sibling, err)
		}
		path = sibling
	}
	parsed, err := parseLanguagesFile(path, raw)
	return parsed, path, err
}

// LoadUserLanguages reads and parses the optional languages.json (or
// languages.yaml) beside path. A missing file is not an error — it simply
// yields no overlay entries.
func LoadUserLanguages(fs platform.FileSystem, path string) ([]ServerConfig, error) {
	parsed, resolvedPath, err := readLanguagesFile(fs, path)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, nil
	}

	dir := filepath.Dir(resolvedPath)
	out := make([]ServerConfig, 0, len(parsed))
	for lang, ul := range parsed {
		grammar := ul.Grammar
		if grammar != "" && !filepath.IsAbs(grammar) {
			grammar = filepath.Join(dir, grammar)
		}
		out = append(out, ServerConfig{
			Language:       lang,
			FileExtensions: ul.Extensions,
			// Command/Args/WorkspaceMarkers are intentionally left blank:
			// a user languages.json entry augments the tree-sitter side
			// (extensions + grammar) without necessarily implying an LSP
			// server exists for it; SetOverlay only replaces fields a
			// caller actually supplied via the merge in table.go.
		})
	}
	return out, nil
}

// LoadUserGrammars reads the same languages.json as LoadUserLanguages but
// returns the raw per-language entries (grammar/queriesDir included) for
// the tree-sitter manager, which has no use for ServerConfig's LSP fields.
// Grammar and QueriesDir are resolved relative to path's directory.
func LoadUserGrammars(fs platform.FileSystem, path string) (map[string]UserLanguage, error) {
	parsed, resolvedPath, err := readLanguagesFile(fs, path)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, nil
	}

	dir := filepath.Dir(resolvedPath)
	out := make(map[string]UserLanguage, len(parsed))
	for lang, ul := range parsed {
		if ul.Grammar != "" && !filepath.IsAbs(ul.Grammar) {
			ul.Grammar = filepath.Join(dir, ul.Grammar)
		}
		if ul.QueriesDir != "" && !filepath.IsAbs(ul.QueriesDir) {
			ul.QueriesDir = filepath.Join(dir, ul.QueriesDir)
		}
		out[lang] = ul
	}
	return out, nil
}

// Watcher live-reloads languages.json into a Table, mirroring the
// teacher's fsnotify-driven manifest reload (lsp/registry.go,
// lsp/generate_watcher.go) adapted to a single config file instead of a
// glob of manifest files.
type Watcher struct {
	table *Table
	fs    platform.FileSystem
	fw    platform.FileWatcher
	path  string
	done  chan struct{}
}

// NewWatcher starts watching path's parent directory (so file-recreate
// after an editor's atomic-save still fires) and reloads table on every
// write/create event.
func NewWatcher(table *Table, fs platform.FileSystem, fw platform.FileWatcher, path string) (*Watcher, error) {
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	w := &Watcher{table: table, fs: fs, fw: fw, path: path, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fw.Events():
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) && filepath.Clean(ev.Name) != filepath.Clean(languagesSiblingPath(w.path)) {
				continue
			}
			overlay, err := LoadUserLanguages(w.fs, w.path)
			if err != nil {
				logging.Warning("reloading %s: %v", w.path, err)
				continue
			}
			w.table.SetOverlay(overlay)
			logging.Info("reloaded %s (%d language overrides)", w.path, len(overlay))
		case err, ok := <-w.fw.Errors():
			if !ok {
				return
			}
			logging.Warning("language config watcher: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher goroutine.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
