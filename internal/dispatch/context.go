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
package dispatch

import (
	"fmt"
	"os"

	"lspbroker.dev/lspbroker/internal/clients"
	"lspbroker.dev/lspbroker/internal/correlator"
	"lspbroker.dev/lspbroker/internal/lspclient"
	"lspbroker.dev/lspbroker/internal/logging"
	"lspbroker.dev/lspbroker/internal/picker"
	"lspbroker.dev/lspbroker/internal/registry"
	"lspbroker.dev/lspbroker/internal/transform"
	"lspbroker.dev/lspbroker/internal/treesitter"
)

// Deps bundles the shared state a Table's handlers operate on. The event
// loop constructs exactly one Deps and passes it to Dispatch for every
// incoming editor line.
type Deps struct {
	Registry   *registry.Registry
	Correlator *correlator.Correlator
	Indexing   *Indexing
	Picker     *picker.Picker
	Treesitter *treesitter.Manager
}

// lspContext is the outcome of get_lsp_context: everything a handler needs
// to build and send an LSP request for one editor method call (spec.md
// §4.6 "Shared preamble").
type lspContext struct {
	Client     *lspclient.Client
	Key        string
	URI        string
	SSHHost    string
	Path       string
	LanguageID string
}

// getLspContext implements spec.md §4.6's shared preamble: validate
// params.file, split off any scp:// host, detect the language, resolve/
// spawn the client, and compute the file:// URI. skipInitCheck lets
// file_open bypass the "Initializing" short-circuit so it can queue a
// PendingOpen instead (spec.md table: "file_open ... queued if
// initializing").
func (d *Deps) getLspContext(file string, skipInitCheck bool) (*lspContext, *Result) {
	if file == "" {
		return nil, resultPtr(Empty())
	}

	parsed := transform.ParseFile(file)

	cfg, ok := d.Registry.ServerConfigFor(parsed.Path)
	if !ok {
		logging.Debug("no language server configured for %s", parsed.Path)
		return nil, resultPtr(Empty())
	}

	key := d.Registry.ResolveKey(cfg, parsed.Path)

	// ResolveKey returns a bare "<language>\0" key when filePath matched no
	// workspace marker (stdlib/toolchain paths, a library path, etc). Before
	// treating that as a fresh client to spawn, reuse any client already
	// running for this language under some other workspace (spec.md §3
	// "Client Key": files without a marker must reuse an existing client).
	if workspaceURIFromKey(key) == "" {
		if existingKey, found := d.Registry.FindKeyByLanguage(cfg.Language); found {
			key = existingKey
		}
	}

	if !skipInitCheck && d.Registry.IsInitializing(key) {
		return nil, resultPtr(Initializing())
	}

	if reason, failed := d.Registry.HasSpawnFailed(key); failed {
		logging.Debug("skipping %s: spawn previously failed: %s", key, reason)
		return nil, resultPtr(Empty())
	}

	var workspaceURI *string
	if uriPart := workspaceURIFromKey(key); uriPart != "" {
		workspaceURI = &uriPart
	}

	client, spawned, err := d.Registry.GetOrCreateClient(key, cfg, workspaceURI, os.Getpid())
	if err != nil {
		logging.Error("failed to spawn %s: %v", cfg.Command, err)
		logging.Notify(fmt.Sprintf("could not start %s language server: %v", cfg.Language, err))
		return nil, resultPtr(Empty())
	}
	if spawned {
		logging.Debug("spawned %s for key %s", cfg.Command, key)
		if !skipInitCheck {
			return nil, resultPtr(Initializing())
		}
	}

	return &lspContext{
		Client:     client,
		Key:        key,
		URI:        transform.PathToFileURI(parsed.Path),
		SSHHost:    parsed.SSHHost,
		Path:       parsed.Path,
		LanguageID: cfg.LanguageID,
	}, nil
}

func resultPtr(r Result) *Result { return &r }

// workspaceURIFromKey extracts the `<workspace_uri>` half of a client key
// built by registry.ClientKey, or "" when the key carries no workspace
// (spec.md §3 "Client Key").
func workspaceURIFromKey(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == 0 {
			return key[i+1:]
		}
	}
	return ""
}

// purgeClient forgets every pending correlator entry owed to id (spec.md
// §4.2). Deferred-queue entries for id are not touched.
func (d *Deps) purgeClient(id clients.ID) {
	d.Correlator.PurgeClient(id)
}
