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
	"net"

	"lspbroker.dev/lspbroker/internal/clients"
	"lspbroker.dev/lspbroker/internal/lspclient"
)

// eventKind tags a daemonEvent. Go's select cannot range over a dynamic
// slice of channels, so every fd this daemon cares about (the listener,
// each editor connection, each LSP child's stdout, the admin socket) is
// fanned into this one channel by a small per-source relay goroutine; only
// the select loop in Run ever touches daemon state (spec.md §4.5/§5 "no
// locking on core state" — channel ownership stands in for poll(2), which
// Go's runtime does not expose portably).
type eventKind uint8

const (
	evAccept eventKind = iota
	evConnLine
	evConnClosed
	evLspMessage
	evLspClosed
	evAdminQuery
)

// daemonEvent is the single tagged-union type the event loop selects on.
// Only the fields relevant to Kind are populated.
type daemonEvent struct {
	kind eventKind

	netConn net.Conn // evAccept

	connID clients.ID // evConnLine, evConnClosed
	line   []byte     // evConnLine

	lspKey string // evLspMessage, evLspClosed
	lspMsg any    // evLspMessage
	lspErr error  // evLspMessage

	adminConn net.Conn // evAdminQuery
}

// acceptLoop forwards every accepted connection onto d.events; it never
// touches daemon state directly.
func (d *Daemon) acceptLoop(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		d.events <- daemonEvent{kind: evAccept, netConn: conn}
	}
}

// adminAcceptLoop is the same shape for the small status-query socket
// (SPEC_FULL.md §4 "structured daemon-internal metrics counters").
func (d *Daemon) adminAcceptLoop(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		d.events <- daemonEvent{kind: evAdminQuery, adminConn: conn}
	}
}

// relayConn drains one editor connection's framed lines onto d.events,
// tagging each with its origin, then reports the disconnect once the
// connection's reader goroutine closes its channel.
func (d *Daemon) relayConn(c *clients.Conn) {
	for ev := range c.Events() {
		if ev.Err != nil {
			continue
		}
		d.events <- daemonEvent{kind: evConnLine, connID: c.ID, line: ev.Line}
	}
	d.events <- daemonEvent{kind: evConnClosed, connID: c.ID}
}

// relayLsp is relayConn's counterpart for a spawned LSP child's stdout.
func (d *Daemon) relayLsp(key string, c *lspclient.Client) {
	for ev := range c.Events() {
		d.events <- daemonEvent{kind: evLspMessage, lspKey: key, lspMsg: ev.Message, lspErr: ev.Err}
	}
	d.events <- daemonEvent{kind: evLspClosed, lspKey: key}
}

// ensureLspRelays starts a relay goroutine for any client the registry
// holds that this daemon hasn't seen yet. Called after every dispatch that
// might have spawned one; only ever runs on the event-loop goroutine, so
// d.relayed needs no lock.
func (d *Daemon) ensureLspRelays() {
	for key, c := range d.registry.Clients() {
		if !d.relayed[key] {
			d.relayed[key] = true
			go d.relayLsp(key, c)
		}
	}
}
