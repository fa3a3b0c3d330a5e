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
package registry

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"lspbroker.dev/lspbroker/internal/config"
	"lspbroker.dev/lspbroker/internal/platform"
)

// walkUpForMarker implements spec.md §4.4's "workspace marker": walk
// upward from dir looking for any of markers. Returns the marker's full
// path and true on the first hit.
func walkUpForMarker(fs platform.FileSystem, dir string, markers []string) (string, bool) {
	for {
		for _, m := range markers {
			candidate := filepath.Join(dir, m)
			if fs.Exists(candidate) {
				return candidate, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// isLibraryPath reports whether path is under a toolchain/registry
// location (spec.md §4.4 "Library paths"), which forces workspace_uri to
// none so the file reuses an existing language client instead of spawning
// a new server.
func isLibraryPath(path, rustupHome, cargoHome string) bool {
	home, _ := os.UserHomeDir()

	var candidates []string
	if rustupHome != "" {
		candidates = append(candidates, filepath.Join(rustupHome, "toolchains"))
	} else if home != "" {
		candidates = append(candidates, filepath.Join(home, ".rustup", "toolchains"))
	}
	if cargoHome != "" {
		candidates = append(candidates,
			filepath.Join(cargoHome, "registry", "src"),
			filepath.Join(cargoHome, "git", "checkouts"))
	} else if home != "" {
		candidates = append(candidates,
			filepath.Join(home, ".cargo", "registry", "src"),
			filepath.Join(home, ".cargo", "git", "checkouts"))
	}

	for _, c := range candidates {
		if strings.HasPrefix(path, c) {
			return true
		}
	}
	return false
}

// memoCache is a small bounded cache (manifest path -> workspace root)
// shared by the Cargo and pyproject resolvers (spec.md §4.4: "cached per
// manifest, bounded cache size").
type memoCache struct {
	mu       sync.Mutex
	capacity int
	order    []string
	values   map[string]string
}

func newMemoCache(capacity int) *memoCache {
	return &memoCache{capacity: capacity, values: make(map[string]string)}
}

func (c *memoCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *memoCache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.values[key]; !exists {
		c.order = append(c.order, key)
		if len(c.order) > c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.values, oldest)
		}
	}
	c.values[key] = value
}

const resolverCacheCapacity = 256

// cargoWorkspaceRoot special-cases Cargo.toml: it invokes `cargo metadata`
// to find the real workspace root (so sub-crates share one server) and
// memoizes the result per manifest path (spec.md §4.4).
func cargoWorkspaceRoot(cache *memoCache, manifestPath string) (string, error) {
	if root, ok := cache.get(manifestPath); ok {
		return root, nil
	}

	out, err := exec.Command("cargo", "metadata", "--no-deps", "--format-version", "1", "--manifest-path", manifestPath).Output()
	if err != nil {
		return "", err
	}
	root := gjson.GetBytes(out, "workspace_root").String()
	if root == "" {
		root = filepath.Dir(manifestPath)
	}
	cache.put(manifestPath, root)
	return root, nil
}

// pyprojectWorkspaceRoot is the supplemented resolver (SPEC_FULL.md §4):
// pyproject.toml workspaces don't need an external tool to resolve — the
// directory containing the nearest pyproject.toml *is* the workspace root.
// Memoized identically to the Cargo resolver so both fit the registry's
// Option<workspace_uri> shape (spec.md §9 "Workspace detection").
func pyprojectWorkspaceRoot(cache *memoCache, manifestPath string) string {
	if root, ok := cache.get(manifestPath); ok {
		return root
	}
	root := filepath.Dir(manifestPath)
	cache.put(manifestPath, root)
	return root
}

// resolveWorkspaceURI computes the client key's workspace component for
// one file under the given server config. It returns ("", false) when no
// workspace marker applies (the caller then falls back to the
// language-only reuse rule).
func resolveWorkspaceURI(fs platform.FileSystem, cfg config.ServerConfig, filePath string, rustupHome, cargoHome string, cargoCache, pyCache *memoCache) (string, bool) {
	if isLibraryPath(filePath, rustupHome, cargoHome) {
		return "", false
	}

	dir := filepath.Dir(filePath)
	marker, ok := walkUpForMarker(fs, dir, cfg.WorkspaceMarkers)
	if !ok {
		return "", false
	}

	switch filepath.Base(marker) {
	case "Cargo.toml":
		root, err := cargoWorkspaceRoot(cargoCache, marker)
		if err != nil {
			// Fall back to the manifest's own directory rather than fail
			// the whole lookup if the cargo binary is unavailable.
			root = filepath.Dir(marker)
		}
		return "file://" + root, true
	case "pyproject.toml":
		root := pyprojectWorkspaceRoot(pyCache, marker)
		return "file://" + root, true
	default:
		return "file://" + filepath.Dir(marker), true
	}
}

// ClientKey builds the `"<language>\0<workspace_uri>"` identity string
// (spec.md §3 "Client Key").
func ClientKey(language, workspaceURI string) string {
	return language + "\x00" + workspaceURI
}

// languagePrefix returns the ClientKey prefix used to find any client for
// a language regardless of workspace, for the "no marker found" reuse rule.
func languagePrefix(language string) string {
	return language + "\x00"
}
