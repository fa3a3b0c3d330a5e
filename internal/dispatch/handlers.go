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
	"lspbroker.dev/lspbroker/internal/clients"
	"lspbroker.dev/lspbroker/internal/lsptypes"
	"lspbroker.dev/lspbroker/internal/registry"
)

func position(p Params) lsptypes.Position {
	return lsptypes.Position{Line: p.Line, Character: p.Column}
}

func textDocumentIdentifier(uri string) map[string]any {
	return map[string]any{"uri": uri}
}

// handleFileOpen implements the `file_open` row: `textDocument/didOpen`,
// queued as a PendingOpen if the client is still initializing instead of
// being dropped (spec.md §4.6 table).
func handleFileOpen(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
	ctx, early := d.getLspContext(p.File, true)
	if early != nil {
		return *early
	}

	if d.Treesitter != nil {
		_ = d.Treesitter.ParseBuffer(ctx.Path, []byte(p.Text))
	}
	if d.Picker != nil {
		d.Picker.Touch(ctx.Path)
	}

	open := registry.PendingOpen{URI: ctx.URI, Text: p.Text, Version: p.Version, LanguageID: ctx.LanguageID}

	if d.Registry.IsInitializing(ctx.Key) {
		d.Registry.QueuePendingOpen(ctx.Key, open)
		return Data(map[string]string{"action": "none"})
	}

	params := map[string]any{
		"textDocument": map[string]any{
			"uri":        ctx.URI,
			"languageId": ctx.LanguageID,
			"version":    p.Version,
			"text":       p.Text,
		},
	}
	_ = ctx.Client.SendNotification("textDocument/didOpen", params)
	return Data(map[string]string{"action": "none"})
}

// handleGoto builds the goto_* row's request; the result is transformed
// later, when the correlated LSP response arrives (spec.md §4.6 table,
// §8 invariant 9).
func handleGoto(lspMethod string) handlerFunc {
	return func(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
		return withContext(d, p.File, false, func(ctx *lspContext) Result {
			params := map[string]any{
				"textDocument": textDocumentIdentifier(ctx.URI),
				"position":     position(p),
			}
			return recordAndSend(d, ctx, clientID, editorID, lspMethod, params)
		})
	}
}

// handlePassthroughPosition covers methods whose LSP params are just
// {textDocument, position} and whose result is returned to the editor
// unmodified (spec.md §4.6: "passthrough").
func handlePassthroughPosition(lspMethod string) handlerFunc {
	return func(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
		return withContext(d, p.File, false, func(ctx *lspContext) Result {
			params := map[string]any{
				"textDocument": textDocumentIdentifier(ctx.URI),
				"position":     position(p),
			}
			return recordAndSend(d, ctx, clientID, editorID, lspMethod, params)
		})
	}
}

// handlePassthroughDocument covers methods whose LSP params are just
// {textDocument} (spec.md: folding_range).
func handlePassthroughDocument(lspMethod string) handlerFunc {
	return func(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
		return withContext(d, p.File, false, func(ctx *lspContext) Result {
			params := map[string]any{"textDocument": textDocumentIdentifier(ctx.URI)}
			return recordAndSend(d, ctx, clientID, editorID, lspMethod, params)
		})
	}
}

// handleReferences adds `context.includeDeclaration=true` per spec.md's
// table entry.
func handleReferences(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
	return withContext(d, p.File, false, func(ctx *lspContext) Result {
		params := map[string]any{
			"textDocument": textDocumentIdentifier(ctx.URI),
			"position":     position(p),
			"context":      map[string]any{"includeDeclaration": true},
		}
		return recordAndSend(d, ctx, clientID, editorID, "textDocument/references", params)
	})
}

// handleRename adds `newName` per spec.md's table entry.
func handleRename(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
	return withContext(d, p.File, false, func(ctx *lspContext) Result {
		params := map[string]any{
			"textDocument": textDocumentIdentifier(ctx.URI),
			"position":     position(p),
			"newName":      p.NewName,
		}
		return recordAndSend(d, ctx, clientID, editorID, "textDocument/rename", params)
	})
}

// handleCodeAction uses a zero-width range at the cursor per spec.md's
// table entry.
func handleCodeAction(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
	return withContext(d, p.File, false, func(ctx *lspContext) Result {
		pos := position(p)
		rng := lsptypes.Range{Start: pos, End: pos}
		params := map[string]any{
			"textDocument": textDocumentIdentifier(ctx.URI),
			"range":        rng,
			"context":      map[string]any{"diagnostics": []any{}},
		}
		return recordAndSend(d, ctx, clientID, editorID, "textDocument/codeAction", params)
	})
}

// handleInlayHints uses the `[start_line,end_line]` range per spec.md's
// table entry.
func handleInlayHints(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
	return withContext(d, p.File, false, func(ctx *lspContext) Result {
		rng := lsptypes.Range{
			Start: lsptypes.Position{Line: p.Line, Character: 0},
			End:   lsptypes.Position{Line: p.EndLine, Character: 0},
		}
		params := map[string]any{
			"textDocument": textDocumentIdentifier(ctx.URI),
			"range":        rng,
		}
		return recordAndSend(d, ctx, clientID, editorID, "textDocument/inlayHint", params)
	})
}

// handleExecuteCommand is a plain passthrough for `workspace/executeCommand`.
func handleExecuteCommand(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
	return withContext(d, p.File, false, func(ctx *lspContext) Result {
		params := map[string]any{
			"command":   p.Command,
			"arguments": p.Arguments,
		}
		return recordAndSend(d, ctx, clientID, editorID, "workspace/executeCommand", params)
	})
}

// handleNotification covers did_change/did_save/did_close/will_save:
// fire-and-forget, always `Empty` (spec.md §4.6 table). did_change also
// re-parses the tree-sitter buffer (spec.md §4.9: a full re-parse runs
// whenever the source content changes); did_close drops its stored tree.
func handleNotification(lspMethod string) handlerFunc {
	return func(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
		ctx, early := d.getLspContext(p.File, true)
		if early != nil {
			return Empty()
		}

		if d.Treesitter != nil {
			switch lspMethod {
			case "textDocument/didChange":
				_ = d.Treesitter.ParseBuffer(ctx.Path, []byte(p.Text))
			case "textDocument/didClose":
				d.Treesitter.RemoveBuffer(ctx.Path)
			}
		}

		params := map[string]any{
			"textDocument": map[string]any{
				"uri":     ctx.URI,
				"version": p.Version,
			},
		}
		if p.Text != "" {
			params["contentChanges"] = []any{map[string]any{"text": p.Text}}
		}
		_ = ctx.Client.SendNotification(lspMethod, params)
		return Empty()
	}
}
