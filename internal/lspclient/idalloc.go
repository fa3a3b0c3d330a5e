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

// Package lspclient owns one spawned LSP child process: its stdio pipes,
// request framing, and the id bookkeeping needed to dispatch responses.
package lspclient

import "sync/atomic"

// IDAllocator is the single counter shared by every LSP client in the
// daemon (spec.md §3 invariant: "LSP request ids are unique across all
// clients (one global counter)"; §9 Open Question mandates this discipline
// over a per-client counter).
type IDAllocator struct {
	counter atomic.Int64
}

// NewIDAllocator returns an allocator starting at 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns the next globally-unique request id.
func (a *IDAllocator) Next() int64 {
	return a.counter.Add(1)
}
