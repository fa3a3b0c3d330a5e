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

// Package dispatch maps editor method names to handlers that build LSP
// requests, fire notifications, or answer directly (spec.md §3 "Handler
// Dispatch", §4.6).
package dispatch

// Kind tags the shape of a DispatchResult (spec.md §4.6: "DispatchResult ∈
// { Data(v) | Empty | PendingLsp(lsp_id) | Initializing }").
type Kind int

const (
	// KindData carries an immediate value to write back to the editor
	// (picker queries, and any other non-LSP-routed method).
	KindData Kind = iota
	// KindEmpty means no editor response body is owed (fire-and-forget
	// notifications, unknown methods).
	KindEmpty
	// KindPendingLsp means an LSP request was sent; the editor response
	// will be written later, when the correlated LSP reply arrives.
	KindPendingLsp
	// KindInitializing means the target client is still initializing;
	// the raw line has been queued on the deferred queue by the caller.
	KindInitializing
)

// Result is what a handler returns to the event loop.
type Result struct {
	Kind  Kind
	Data  any
	LspID int64
}

func Data(v any) Result       { return Result{Kind: KindData, Data: v} }
func Empty() Result           { return Result{Kind: KindEmpty} }
func PendingLsp(id int64) Result { return Result{Kind: KindPendingLsp, LspID: id} }
func Initializing() Result    { return Result{Kind: KindInitializing} }
