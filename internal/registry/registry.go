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

// Package registry owns the pool of spawned LSP clients, keyed by
// language+workspace, and the workspace-detection logic that computes that
// key for a given file (spec.md §3 "LSP Registry", §4.4).
package registry

import (
	"os"
	"strings"
	"sync"

	"lspbroker.dev/lspbroker/internal/config"
	"lspbroker.dev/lspbroker/internal/lspclient"
	"lspbroker.dev/lspbroker/internal/platform"
)

// PendingOpen is a `textDocument/didOpen` (and its originating request, if
// any) that arrived before the client's `initialize` round-trip completed,
// queued for replay once the client reaches ready (spec.md §4.4
// "Initializing" / §7 "Deferred until ready").
type PendingOpen struct {
	URI        string
	Text       string
	Version    int
	LanguageID string
}

// Registry owns every spawned LSP client plus the bookkeeping needed to
// reuse them: the Cargo/pyproject workspace-root caches, failed-spawn
// memoization (so a broken server isn't retried on every keystroke), and
// per-client pending-open queues used while a client is still initializing.
type Registry struct {
	mu sync.Mutex

	fs    platform.FileSystem
	table *config.Table
	ids   *lspclient.IDAllocator

	rustupHome string
	cargoHome  string

	cargoCache *memoCache
	pyCache    *memoCache

	bufferBytes int

	clients      map[string]*lspclient.Client
	pendingOpens map[string][]PendingOpen
	spawnFailed  map[string]string // key -> reason
}

// New builds a Registry. bufferBytes bounds each client's LSP framer
// (spec.md §5 "Resource bounds").
func New(fs platform.FileSystem, table *config.Table, bufferBytes int) *Registry {
	return &Registry{
		fs:           fs,
		table:        table,
		ids:          lspclient.NewIDAllocator(),
		rustupHome:   os.Getenv("RUSTUP_HOME"),
		cargoHome:    os.Getenv("CARGO_HOME"),
		cargoCache:   newMemoCache(resolverCacheCapacity),
		pyCache:      newMemoCache(resolverCacheCapacity),
		bufferBytes:  bufferBytes,
		clients:      make(map[string]*lspclient.Client),
		pendingOpens: make(map[string][]PendingOpen),
		spawnFailed:  make(map[string]string),
	}
}

// ServerConfigFor looks up the server config whose extensions claim
// filePath, delegating to the shared language table (spec.md §4.4
// `detect_language`).
func (r *Registry) ServerConfigFor(filePath string) (config.ServerConfig, bool) {
	return r.table.DetectLanguage(filePath)
}

// ResolveKey computes the client key for filePath under the given server
// config, applying the library-path / workspace-marker / language-only
// fallback rules of spec.md §4.4 in that order.
func (r *Registry) ResolveKey(cfg config.ServerConfig, filePath string) string {
	uri, ok := resolveWorkspaceURI(r.fs, cfg, filePath, r.rustupHome, r.cargoHome, r.cargoCache, r.pyCache)
	if ok {
		return ClientKey(cfg.Language, uri)
	}
	return ClientKey(cfg.Language, "")
}

// HasSpawnFailed reports whether a previous spawn of key failed, and why.
// The daemon consults this before trying again so a single broken server
// binary doesn't get re-exec'd on every request (spec.md §7 "Spawn
// failure").
func (r *Registry) HasSpawnFailed(key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reason, ok := r.spawnFailed[key]
	return reason, ok
}

// MarkSpawnFailed memoizes a spawn failure for key.
func (r *Registry) MarkSpawnFailed(key string, reason string) {
	r.mu.Lock()
	r.spawnFailed[key] = reason
	r.mu.Unlock()
}

// ClearSpawnFailed forgets a memoized failure, used by the supplemented
// `languages.json` reload path (SPEC_FULL.md §4): editing the config is
// the user's signal that they've fixed the command.
func (r *Registry) ClearSpawnFailed(key string) {
	r.mu.Lock()
	delete(r.spawnFailed, key)
	r.mu.Unlock()
}

// Lookup returns the existing client for key, if any, without spawning.
func (r *Registry) Lookup(key string) (*lspclient.Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[key]
	return c, ok
}

// GetOrCreateClient returns the existing client for key or spawns a new one
// from cfg, sending `initialize` immediately (spec.md §4.4 "Client
// lifecycle"). The returned bool is true when a new client was spawned.
func (r *Registry) GetOrCreateClient(key string, cfg config.ServerConfig, workspaceURI *string, processID int) (*lspclient.Client, bool, error) {
	r.mu.Lock()
	if c, ok := r.clients[key]; ok {
		r.mu.Unlock()
		return c, false, nil
	}
	r.mu.Unlock()

	c, err := lspclient.Spawn(key, cfg.Command, cfg.Args, r.ids, r.bufferBytes)
	if err != nil {
		r.MarkSpawnFailed(key, err.Error())
		return nil, false, err
	}

	if _, err := c.Initialize(workspaceURI, processID); err != nil {
		_ = c.Kill()
		r.MarkSpawnFailed(key, err.Error())
		return nil, false, err
	}

	r.mu.Lock()
	r.clients[key] = c
	r.mu.Unlock()
	return c, true, nil
}

// IsInitializing reports whether the client for key exists but hasn't yet
// completed its initialize round-trip (spec.md §4.6: requests against an
// initializing client are deferred, not dropped).
func (r *Registry) IsInitializing(key string) bool {
	r.mu.Lock()
	c, ok := r.clients[key]
	r.mu.Unlock()
	return ok && c.State() == lspclient.StateInitializing
}

// HandleInitializeResponse marks the client for key ready and returns any
// didOpen calls that were queued while it was initializing, for the caller
// to replay in arrival order (spec.md §4.4 "Replay on ready").
func (r *Registry) HandleInitializeResponse(key string) ([]PendingOpen, error) {
	r.mu.Lock()
	c, ok := r.clients[key]
	opens := r.pendingOpens[key]
	delete(r.pendingOpens, key)
	r.mu.Unlock()

	if !ok {
		return nil, nil
	}
	if err := c.MarkReady(); err != nil {
		return opens, err
	}
	return opens, nil
}

// QueuePendingOpen records a didOpen that arrived before key's client
// reached ready.
func (r *Registry) QueuePendingOpen(key string, open PendingOpen) {
	r.mu.Lock()
	r.pendingOpens[key] = append(r.pendingOpens[key], open)
	r.mu.Unlock()
}

// RemoveClient drops key from the pool (called on HUP/death or idle
// eviction) and returns whatever it held, so the caller can log a
// stderr tail or notify the editor (spec.md §7 "LSP death").
func (r *Registry) RemoveClient(key string) (*lspclient.Client, bool) {
	r.mu.Lock()
	c, ok := r.clients[key]
	delete(r.clients, key)
	delete(r.pendingOpens, key)
	r.mu.Unlock()
	return c, ok
}

// Clients returns a snapshot of all live clients, keyed by client key; used
// by the event loop to build its select set and by the metrics/status
// surface (SPEC_FULL.md §4 "Supplemented: daemon status").
func (r *Registry) Clients() map[string]*lspclient.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*lspclient.Client, len(r.clients))
	for k, v := range r.clients {
		out[k] = v
	}
	return out
}

// FindByLanguage returns any existing client whose key starts with
// language's prefix, regardless of workspace — the fallback used when a
// file matches no workspace marker at all (spec.md §4.4 "No marker: reuse
// any client for the language").
func (r *Registry) FindByLanguage(language string) (*lspclient.Client, bool) {
	_, c, ok := r.findByLanguage(language)
	return c, ok
}

// FindKeyByLanguage is FindByLanguage but also returns the matched client's
// key, so a caller resolving a no-marker file can reuse that exact key
// instead of spawning a second client under the bare language key (spec.md
// §3 "Client Key": files without a workspace marker must reuse any
// existing client for that language).
func (r *Registry) FindKeyByLanguage(language string) (string, bool) {
	k, _, ok := r.findByLanguage(language)
	return k, ok
}

func (r *Registry) findByLanguage(language string) (string, *lspclient.Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := languagePrefix(language)
	for k, c := range r.clients {
		if strings.HasPrefix(k, prefix) {
			return k, c, true
		}
	}
	return "", nil, false
}

// Shutdown sends shutdown/exit to every live client (spec.md §5
// "Cancellation on daemon exit").
func (r *Registry) Shutdown() {
	r.mu.Lock()
	clients := make([]*lspclient.Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	for _, c := range clients {
		c.Shutdown()
	}
}
