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

// Package correlator tracks which editor request an outstanding LSP
// request was made on behalf of, and which daemon→editor expr call an
// editor reply belongs to (spec.md §3 "Request Correlator", §4.3
// "PendingLspRequest"). It is owned exclusively by the daemon's
// single-consumer event-loop goroutine — no locking (spec.md §4.5's "no
// locking on core state" invariant).
package correlator

import "lspbroker.dev/lspbroker/internal/clients"

// PendingLspRequest is one outstanding LSP request created on behalf of an
// editor request (spec.md §4.3).
type PendingLspRequest struct {
	EditorID *int64 // nil for requests the daemon issues on its own behalf
	Method   string
	SSHHost  string // "" when the file path carried no scp:// prefix
	File     string
	ClientID clients.ID
}

// PendingEditorExpr is the context for a daemon→editor `["expr", ..., id]`
// call awaiting the editor's reply (spec.md §4.2/§6).
type PendingEditorExpr struct {
	ClientID clients.ID
	Purpose  string // e.g. "cursor_position_for_hover"
}

// Correlator is the lsp_request_id → editor context table plus the
// editor-expr-id → pending-expr table (spec.md GLOSSARY "Correlator").
type Correlator struct {
	lspRequests map[int64]PendingLspRequest
	editorExprs map[int64]PendingEditorExpr
}

// New returns an empty Correlator.
func New() *Correlator {
	return &Correlator{
		lspRequests: make(map[int64]PendingLspRequest),
		editorExprs: make(map[int64]PendingEditorExpr),
	}
}

// RecordLspRequest remembers that lspID was sent on behalf of req.
func (c *Correlator) RecordLspRequest(lspID int64, req PendingLspRequest) {
	c.lspRequests[lspID] = req
}

// TakeLspRequest removes and returns the pending request for lspID, used
// when its matching LSP response arrives (spec.md §4.7: "take the matching
// PendingLspRequest from the correlator; if absent, log as unmatched").
func (c *Correlator) TakeLspRequest(lspID int64) (PendingLspRequest, bool) {
	req, ok := c.lspRequests[lspID]
	if ok {
		delete(c.lspRequests, lspID)
	}
	return req, ok
}

// RecordEditorExpr remembers that exprID is awaiting an editor reply.
func (c *Correlator) RecordEditorExpr(exprID int64, ctx PendingEditorExpr) {
	c.editorExprs[exprID] = ctx
}

// IsOutstandingExprID reports whether exprID is still awaiting a reply;
// this is the lookup rpc.ParseEditorLine needs to disambiguate a positive
// leading id between "new editor request" and "reply to our expr call"
// (spec.md §4.2).
func (c *Correlator) IsOutstandingExprID(exprID int64) bool {
	_, ok := c.editorExprs[exprID]
	return ok
}

// TakeEditorExpr removes and returns the pending expr context for exprID.
func (c *Correlator) TakeEditorExpr(exprID int64) (PendingEditorExpr, bool) {
	ctx, ok := c.editorExprs[exprID]
	if ok {
		delete(c.editorExprs, exprID)
	}
	return ctx, ok
}

// PurgeClient discards every pending LSP request and expr call belonging
// to id, called when its editor connection disconnects (spec.md §4.2: "On
// destruction, all its pending LSP correlations and deferred requests are
// purged"; §8 invariant 4 "Correlator integrity").
func (c *Correlator) PurgeClient(id clients.ID) {
	for lspID, req := range c.lspRequests {
		if req.ClientID == id {
			delete(c.lspRequests, lspID)
		}
	}
	for exprID, ctx := range c.editorExprs {
		if ctx.ClientID == id {
			delete(c.editorExprs, exprID)
		}
	}
}

// Len reports the number of outstanding LSP requests, for the supplemented
// status surface.
func (c *Correlator) Len() int { return len(c.lspRequests) }
