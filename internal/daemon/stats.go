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
package daemon

import (
	"encoding/json"
	"net"

	"lspbroker.dev/lspbroker/internal/logging"
)

// Stats is the daemon-internal metrics counters SPEC_FULL.md §4 adds:
// event-loop iterations plus dispatched/deferred/spawn counts. Only the
// event-loop goroutine ever mutates these, so Stats is safe to read from
// the same goroutine that mutates it (the admin query handler) without a
// lock; it must not be read concurrently from outside the daemon.
type Stats struct {
	Iterations  int64 `json:"iterations"`
	Connections int64 `json:"connections"`
	Dispatched  int64 `json:"dispatched"`
	Deferred    int64 `json:"deferred"`
	LspSpawns   int64 `json:"lsp_spawns"`
}

// Stats returns a snapshot of the current counters, for tests and the
// admin endpoint.
func (d *Daemon) Stats() Stats { return d.stats }

// handleAdminQuery answers one connection to the admin socket with a JSON
// Stats snapshot and closes it. The write happens on the event-loop
// goroutine itself (same goroutine that owns Stats), so no lock is needed;
// this is a small, bounded, control-only surface, not the read/write path
// spec.md §4.5 says must never block.
func (d *Daemon) handleAdminQuery(conn net.Conn) {
	defer conn.Close()
	body, err := json.Marshal(d.stats)
	if err != nil {
		logging.Debug("admin query: marshal stats: %v", err)
		return
	}
	if _, err := conn.Write(append(body, '\n')); err != nil {
		logging.Debug("admin query: write: %v", err)
	}
}
