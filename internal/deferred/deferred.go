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

// Package deferred implements the bounded FIFO of raw editor lines held
// back while the relevant language is indexing or the relevant client is
// still initializing (spec.md §3 "Deferred Queue", §4.8).
package deferred

import (
	"time"

	"lspbroker.dev/lspbroker/internal/clients"
	"lspbroker.dev/lspbroker/internal/platform"
)

// Capacity is the bounded queue size (spec.md §5 "Resource bounds").
const Capacity = 50

// TTL is how long a deferred entry stays eligible for replay (spec.md
// §4.8: "~10 s").
const TTL = 10 * time.Second

// Entry is one stashed editor line (spec.md §4.3 "DeferredRequest").
type Entry struct {
	ClientID clients.ID
	RawLine  []byte
	At       time.Time
}

// Queue is the bounded FIFO itself. It is owned exclusively by the event
// loop goroutine (spec.md §5 "no locking on core state").
type Queue struct {
	entries  []Entry
	time     platform.TimeProvider
	evictNotify func(clients.ID)
}

// New returns an empty queue. evictNotify, if non-nil, is invoked with the
// evicted entry's ClientID whenever Push evicts the oldest entry for lack
// of room — the daemon wires this to an `echo` per spec.md §4.8 ("editor
// is notified by a brief echo") gated by
// config.Daemon.NotifyOnDeferredEvict (see DESIGN.md Open Question 2).
func New(time platform.TimeProvider, evictNotify func(clients.ID)) *Queue {
	return &Queue{time: time, evictNotify: evictNotify}
}

// Push appends line for clientID, evicting the oldest entry first if the
// queue is already at Capacity.
func (q *Queue) Push(clientID clients.ID, line []byte) {
	if len(q.entries) >= Capacity {
		evicted := q.entries[0]
		q.entries = q.entries[1:]
		if q.evictNotify != nil {
			q.evictNotify(evicted.ClientID)
		}
	}
	cp := make([]byte, len(line))
	copy(cp, line)
	q.entries = append(q.entries, Entry{ClientID: clientID, RawLine: cp, At: q.time.Now()})
}

// Len reports the number of queued entries.
func (q *Queue) Len() int { return len(q.entries) }

// Flush removes every entry, returning the still-fresh ones (age < TTL) in
// FIFO order; expired entries are dropped silently (spec.md §4.8, §8
// invariant 6 "TTL"). The caller is responsible for checking each
// returned entry's ClientID is still connected before replay (spec.md
// invariant 5 "Deferral & replay").
func (q *Queue) Flush() []Entry {
	now := q.time.Now()
	fresh := make([]Entry, 0, len(q.entries))
	for _, e := range q.entries {
		if now.Sub(e.At) < TTL {
			fresh = append(fresh, e)
		}
	}
	q.entries = nil
	return fresh
}

// PurgeClient drops every queued entry belonging to id, called on
// disconnect (spec.md §4.2 "On destruction ... deferred requests are
// purged").
func (q *Queue) PurgeClient(id clients.ID) {
	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.ClientID != id {
			kept = append(kept, e)
		}
	}
	q.entries = kept
}
