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

// Package clients owns the table of accepted editor connections (spec.md
// §3 "Clients Table", §4.2 "Editor Connection"): ClientId assignment, each
// connection's append-only partial-line buffer, and its destruction on
// EOF/HUP/read-error.
package clients

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"lspbroker.dev/lspbroker/internal/framer"
	"lspbroker.dev/lspbroker/internal/rpc"
)

// ID is the opaque, monotonically-assigned, never-reused identifier for one
// editor connection (spec.md GLOSSARY "ClientId").
type ID int64

// Conn is one accepted editor connection: its stream handle and the framer
// that buffers partial lines across reads (spec.md §4.2 "Editor
// Connection"). Conn's framer is used only by the connection's reader
// goroutine, which feeds it each read and sends the complete lines on events.
type Conn struct {
	ID   ID
	conn net.Conn

	framer *framer.EditorFramer

	events chan Event
	closed chan struct{}
}

// Event is one complete editor-protocol line, or a terminal read error that
// means the connection should be torn down.
type Event struct {
	Line []byte
	Err  error
}

// Events returns the channel of framed editor lines.
func (c *Conn) Events() <-chan Event { return c.events }

// Closed is closed once the reader goroutine observes EOF/HUP/read-error.
func (c *Conn) Closed() <-chan struct{} { return c.closed }

// Write best-effort writes body to the connection. Per spec.md §4.5 ("The
// loop never blocks on a write"), failures are reported but not retried;
// the connection is reaped on its next HUP.
func (c *Conn) Write(body []byte) error {
	_, err := c.conn.Write(body)
	return err
}

// Close closes the underlying stream.
func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) readLoop() {
	defer close(c.events)
	defer close(c.closed)

	buf := make([]byte, 4096)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			for _, line := range c.framer.Feed(buf[:n]) {
				c.events <- Event{Line: line}
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.events <- Event{Err: err}
			}
			return
		}
	}
}

// Table is the set of live editor connections, keyed by ID (spec.md §3
// "Clients Table").
type Table struct {
	mu    sync.RWMutex
	next  atomic.Int64
	conns map[ID]*Conn
}

// NewTable returns an empty Table; ids start at 1.
func NewTable() *Table {
	return &Table{conns: make(map[ID]*Conn)}
}

// Accept assigns a new ClientId to netConn, registers it in the table, and
// starts its reader goroutine (spec.md §4.5 "Listener readable").
func (t *Table) Accept(netConn net.Conn) *Conn {
	id := ID(t.next.Add(1))
	c := &Conn{
		ID:     id,
		conn:   netConn,
		framer: framer.NewEditorFramer(),
		events: make(chan Event, 64),
		closed: make(chan struct{}),
	}

	t.mu.Lock()
	t.conns[id] = c
	t.mu.Unlock()

	go c.readLoop()
	return c
}

// Remove drops id from the table (spec.md §4.2: "destroyed on EOF/HUP/read
// error"). The caller is responsible for purging correlator/deferred state
// for id before or after calling this.
func (t *Table) Remove(id ID) {
	t.mu.Lock()
	delete(t.conns, id)
	t.mu.Unlock()
}

// Get returns the connection for id, if still live.
func (t *Table) Get(id ID) (*Conn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.conns[id]
	return c, ok
}

// All returns a snapshot of every live connection, for the event loop's
// select set and for BroadcastEcho fan-out.
func (t *Table) All() []*Conn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Conn, 0, len(t.conns))
	for _, c := range t.conns {
		out = append(out, c)
	}
	return out
}

// Len reports the number of live connections, used by the supplemented
// status/metrics surface (SPEC_FULL.md §4).
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.conns)
}

// BroadcastEcho implements logging.Broadcaster: it fans an `echo`/`echoerr`
// channel command out to every live editor connection (spec.md §7 "LSP
// death": "broadcast an error message to editors").
func (t *Table) BroadcastEcho(message string, isError bool) {
	method := "echo"
	if isError {
		method = "echoerr"
	}
	body, err := rpc.BuildEditorNotification(method, message)
	if err != nil {
		return
	}
	framed := framer.FrameEditor(body)
	for _, c := range t.All() {
		_ = c.Write(framed)
	}
}
