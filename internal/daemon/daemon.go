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

// Package daemon is the single-consumer-goroutine reactor spec.md §4.5
// describes: it owns the Unix socket listener, the clients table, the LSP
// registry, the request correlator, and the deferred queue, and is the
// only goroutine in the process allowed to mutate any of them. Every other
// goroutine here (per-connection readers, per-LSP-client readers, the
// accept loops) only ever forwards events onto one channel.
package daemon

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lspbroker.dev/lspbroker/internal/clients"
	"lspbroker.dev/lspbroker/internal/config"
	"lspbroker.dev/lspbroker/internal/correlator"
	"lspbroker.dev/lspbroker/internal/deferred"
	"lspbroker.dev/lspbroker/internal/dispatch"
	"lspbroker.dev/lspbroker/internal/framer"
	"lspbroker.dev/lspbroker/internal/logging"
	"lspbroker.dev/lspbroker/internal/picker"
	"lspbroker.dev/lspbroker/internal/platform"
	"lspbroker.dev/lspbroker/internal/registry"
	"lspbroker.dev/lspbroker/internal/rpc"
	"lspbroker.dev/lspbroker/internal/treesitter"
)

// Daemon is one running instance: its resource bounds, the event-loop
// channel every other goroutine feeds, and the component graph the loop
// dispatches through.
type Daemon struct {
	cfg   config.Daemon
	table *config.Table

	registry   *registry.Registry
	correlator *correlator.Correlator
	deferredQ  *deferred.Queue
	indexing   *dispatch.Indexing
	clientsTable *clients.Table
	picker     *picker.Picker
	treesitter *treesitter.Manager
	deps       *dispatch.Deps

	listener      net.Listener
	adminListener net.Listener
	socketPath    string
	adminSocketPath string

	events  chan daemonEvent
	relayed map[string]bool

	stats Stats
}

// New wires up an unstarted Daemon from the given resource bounds, server
// table, filesystem, and time provider (the latter two let tests inject
// fakes the way internal/registry and internal/deferred already expect).
func New(cfg config.Daemon, table *config.Table, fs platform.FileSystem, tp platform.TimeProvider) *Daemon {
	d := &Daemon{
		cfg:          cfg,
		table:        table,
		clientsTable: clients.NewTable(),
		correlator:   correlator.New(),
		indexing:     dispatch.NewIndexing(),
		picker:       picker.New(),
		treesitter:   treesitter.NewManager(),
		events:       make(chan daemonEvent, 256),
		relayed:      make(map[string]bool),
	}
	d.registry = registry.New(fs, table, cfg.FramerBufferBytes)
	d.deferredQ = deferred.New(tp, d.onDeferredEvict)
	d.deps = &dispatch.Deps{
		Registry:   d.registry,
		Correlator: d.correlator,
		Indexing:   d.indexing,
		Picker:     d.picker,
		Treesitter: d.treesitter,
	}

	logging.SetMode(logging.ModeDaemon)
	logging.SetBroadcaster(d.clientsTable)
	return d
}

// onDeferredEvict is wired into the deferred queue as its eviction
// callback (spec.md §4.8 "editor is notified by a brief echo"), gated by
// the config flag per DESIGN.md's Open Question 2 decision.
func (d *Daemon) onDeferredEvict(id clients.ID) {
	if !d.cfg.NotifyOnDeferredEvict {
		return
	}
	conn, ok := d.clientsTable.Get(id)
	if !ok {
		return
	}
	body, err := rpc.BuildEditorNotification("echo", "a deferred request was dropped: queue full")
	if err != nil {
		return
	}
	_ = conn.Write(framer.FrameEditor(body))
}

// Run binds the daemon's socket, starts the accept and relay goroutines,
// and runs the event loop until idle timeout, a shutdown signal, or ctx
// cancellation. It returns nil on a clean exit.
func (d *Daemon) Run(ctx context.Context) error {
	socketPath := config.SocketPath(d.cfg.SocketName)
	listener, err := bindSocket(socketPath)
	if err != nil {
		return err
	}
	d.listener = listener
	d.socketPath = socketPath
	defer os.Remove(socketPath)
	defer listener.Close()
	go d.acceptLoop(listener)

	adminPath := socketPath + ".admin"
	if adminListener, err := bindSocket(adminPath); err == nil {
		d.adminListener = adminListener
		d.adminSocketPath = adminPath
		defer os.Remove(adminPath)
		defer adminListener.Close()
		go d.adminAcceptLoop(adminListener)
	} else {
		logging.Debug("admin socket unavailable: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	idleTimer := time.NewTimer(d.cfg.IdleTimeout)
	defer idleTimer.Stop()

	logging.Info("listening on %s", socketPath)

	for {
		select {
		case ev := <-d.events:
			d.handleEvent(ev)
			d.stats.Iterations++
			d.rearmIdle(idleTimer)

		case <-idleTimer.C:
			logging.Info("idle for %s with no clients; exiting", d.cfg.IdleTimeout)
			d.shutdown()
			return nil

		case sig := <-sigCh:
			logging.Info("received %s; shutting down", sig)
			d.shutdown()
			return nil

		case <-ctx.Done():
			d.shutdown()
			return ctx.Err()
		}
	}
}

// rearmIdle implements the idle lifecycle spec.md §5 describes: zero
// clients arms the deadline, any client's arrival cancels it. It always
// stops the timer first so a just-connected client can never race a stale
// fire; it only restarts the timer when the table is still empty.
func (d *Daemon) rearmIdle(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	if d.clientsTable.Len() == 0 {
		t.Reset(d.cfg.IdleTimeout)
	}
}

// shutdown sends shutdown/exit to every live LSP client, closes every
// editor connection, and releases the picker's scanner — the supplemented
// graceful-exit path (SPEC_FULL.md §4) that backs up spec.md §5's
// idle-timeout exit with a signal-driven one.
func (d *Daemon) shutdown() {
	d.registry.Shutdown()
	for _, c := range d.clientsTable.All() {
		_ = c.Close()
	}
	d.picker.Close()
}

// SocketPath returns the editor-facing Unix socket path once Run has
// bound it.
func (d *Daemon) SocketPath() string { return d.socketPath }

// AdminSocketPath returns the status-query socket path, if it bound
// successfully; "" otherwise.
func (d *Daemon) AdminSocketPath() string { return d.adminSocketPath }
