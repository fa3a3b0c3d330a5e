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
	"encoding/json"

	"lspbroker.dev/lspbroker/internal/clients"
	"lspbroker.dev/lspbroker/internal/correlator"
	"lspbroker.dev/lspbroker/internal/logging"
)

// queryMethods is the set spec.md §4.8 names as deferrable during
// indexing: "goto/*, hover, completion, references, rename, code_action,
// document_symbols, inlay_hints, folding_range, call_hierarchy,
// picker_query". picker_file_query/picker_grep_query carry no `file` and
// so have no language to key the indexing counter on; they are excluded
// here and always dispatched immediately.
var queryMethods = map[string]bool{
	"goto_definition":     true,
	"goto_declaration":    true,
	"goto_type_definition": true,
	"goto_implementation":  true,
	"hover":                true,
	"completion":           true,
	"references":           true,
	"rename":               true,
	"code_action":          true,
	"document_symbols":     true,
	"inlay_hints":          true,
	"folding_range":        true,
	"call_hierarchy":       true,
}

// handlerFunc builds and sends an LSP request (or answers directly) for
// one editor method call.
type handlerFunc func(d *Deps, clientID clients.ID, editorID int64, params Params) Result

var handlers = map[string]handlerFunc{
	"file_open":             handleFileOpen,
	"goto_definition":       handleGoto("textDocument/definition"),
	"goto_declaration":      handleGoto("textDocument/declaration"),
	"goto_type_definition":  handleGoto("textDocument/typeDefinition"),
	"goto_implementation":   handleGoto("textDocument/implementation"),
	"hover":                 handlePassthroughPosition("textDocument/hover"),
	"completion":            handlePassthroughPosition("textDocument/completion"),
	"references":            handleReferences,
	"rename":                handleRename,
	"code_action":           handleCodeAction,
	"document_symbols":      handlePassthroughDocument("textDocument/documentSymbol"),
	"inlay_hints":           handleInlayHints,
	"folding_range":         handlePassthroughDocument("textDocument/foldingRange"),
	"call_hierarchy":        handlePassthroughPosition("textDocument/prepareCallHierarchy"),
	"execute_command":       handleExecuteCommand,
	"did_change":            handleNotification("textDocument/didChange"),
	"did_save":              handleNotification("textDocument/didSave"),
	"did_close":             handleNotification("textDocument/didClose"),
	"will_save":             handleNotification("textDocument/willSave"),
	"picker_init":           handlePickerInit,
	"picker_file_query":     handlePickerFileQuery,
	"picker_grep_query":     handlePickerGrepQuery,
	"picker_close":          handlePickerClose,
	"buffer_symbols":        handleBufferQuery(symbolsQuery),
	"buffer_folds":          handleBufferQuery(foldsQuery),
	"buffer_highlights":     handleBufferQuery(highlightsQuery),
	"buffer_textobjects":    handleBufferQuery(textobjectsQuery),
}

// Dispatch routes one editor request to its handler, honoring the
// indexing-deferral policy (spec.md §4.8) ahead of the handler's own
// get_lsp_context preamble. The caller (event loop) is responsible for
// actually pushing onto the deferred queue when KindInitializing comes
// back — Dispatch only decides *that* deferral is needed, not how it's
// stored.
func Dispatch(d *Deps, clientID clients.ID, editorID int64, method string, rawParams json.RawMessage) Result {
	handler, ok := handlers[method]
	if !ok {
		logging.Debug("unknown editor method %q", method)
		return Empty()
	}

	params := ParseParams(rawParams)

	if queryMethods[method] && params.File != "" {
		if cfg, ok := d.Registry.ServerConfigFor(params.File); ok && d.Indexing.IsIndexing(cfg.Language) {
			return Initializing()
		}
	}

	return handler(d, clientID, editorID, params)
}

// recordAndSend sends an LSP request built from builder, recording the
// correlator entry the response handler needs (spec.md §4.3 data flow).
func recordAndSend(d *Deps, ctx *lspContext, clientID clients.ID, editorID int64, method string, lspParams any) Result {
	lspID, err := ctx.Client.SendRequest(method, lspParams)
	if err != nil {
		logging.Error("send %s to %s failed: %v", method, ctx.Key, err)
		return Empty()
	}
	d.Correlator.RecordLspRequest(lspID, correlator.PendingLspRequest{
		EditorID: &editorID,
		Method:   method,
		SSHHost:  ctx.SSHHost,
		File:     ctx.Path,
		ClientID: clientID,
	})
	return PendingLsp(lspID)
}

// withContext runs the shared get_lsp_context preamble and, on success,
// fn; on any early exit (no file, initializing, spawn failure) it returns
// that result instead.
func withContext(d *Deps, file string, skipInit bool, fn func(ctx *lspContext) Result) Result {
	ctx, early := d.getLspContext(file, skipInit)
	if early != nil {
		return *early
	}
	return fn(ctx)
}
