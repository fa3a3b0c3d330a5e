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
	"strings"

	"github.com/tidwall/gjson"

	"lspbroker.dev/lspbroker/internal/clients"
	"lspbroker.dev/lspbroker/internal/dispatch"
	"lspbroker.dev/lspbroker/internal/framer"
	"lspbroker.dev/lspbroker/internal/logging"
	"lspbroker.dev/lspbroker/internal/lspclient"
	"lspbroker.dev/lspbroker/internal/rpc"
	"lspbroker.dev/lspbroker/internal/transform"
)

// handleEvent is the only place daemon state is mutated — every other
// goroutine in this package only ever sends on d.events.
func (d *Daemon) handleEvent(ev daemonEvent) {
	switch ev.kind {
	case evAccept:
		conn := d.clientsTable.Accept(ev.netConn)
		d.stats.Connections++
		go d.relayConn(conn)

	case evConnLine:
		d.handleConnLine(ev.connID, ev.line)

	case evConnClosed:
		d.clientsTable.Remove(ev.connID)
		d.correlator.PurgeClient(ev.connID)
		d.deferredQ.PurgeClient(ev.connID)

	case evLspMessage:
		d.handleLspMessage(ev.lspKey, ev.lspMsg, ev.lspErr)

	case evLspClosed:
		d.handleLspClosed(ev.lspKey)

	case evAdminQuery:
		d.handleAdminQuery(ev.adminConn)
	}
}

// handleConnLine classifies one framed editor line and routes it (spec.md
// §4.2 "Editor Connection" / §4.5 "Connection readable").
func (d *Daemon) handleConnLine(connID clients.ID, line []byte) {
	parsed, err := rpc.ParseEditorLine(line, d.correlator.IsOutstandingExprID)
	if err != nil {
		logging.Debug("malformed editor line from client %d: %v", connID, err)
		return
	}

	switch msg := parsed.(type) {
	case rpc.EditorRequest:
		d.dispatchRequest(connID, msg.ID, msg.Method, msg.Params, line)
	case rpc.EditorNotification:
		dispatch.Dispatch(d.deps, connID, 0, msg.Method, msg.Params)
		d.ensureLspRelays()
	case rpc.EditorResponse:
		d.handleEditorResponse(connID, msg)
	}
}

// dispatchRequest runs the dispatch table and acts on its verdict: write a
// response now, defer the raw line, or wait for the correlated LSP reply
// (spec.md §4.6 "DispatchResult").
func (d *Daemon) dispatchRequest(connID clients.ID, editorID int64, method string, params json.RawMessage, rawLine []byte) {
	result := dispatch.Dispatch(d.deps, connID, editorID, method, params)
	d.ensureLspRelays()
	d.stats.Dispatched++

	switch result.Kind {
	case dispatch.KindInitializing:
		d.deferredQ.Push(connID, rawLine)
		d.stats.Deferred++
	case dispatch.KindData:
		d.writeResponse(connID, editorID, result.Data)
	case dispatch.KindEmpty:
		d.writeResponse(connID, editorID, nil)
	case dispatch.KindPendingLsp:
		// Answered later, when the correlated LSP response arrives
		// (handleLspResponse).
	}
}

// handleEditorResponse answers a reply to a daemon→editor expr call.
// Nothing in this dispatch table currently issues one (no handler calls
// correlator.RecordEditorExpr), but the routing exists so a
// future expr-based flow (e.g. asking the editor for cursor context) has
// somewhere to plug in.
func (d *Daemon) handleEditorResponse(connID clients.ID, msg rpc.EditorResponse) {
	if _, ok := d.correlator.TakeEditorExpr(msg.ID); ok {
		logging.Debug("editor expr reply id=%d from client %d", msg.ID, connID)
		return
	}
	logging.Debug("unmatched editor response id=%d from client %d", msg.ID, connID)
}

// writeResponse writes `[-editorID, data]` back to connID, if it's still
// connected (spec.md §4.2: a response to a connection that's already gone
// is simply dropped, not an error).
func (d *Daemon) writeResponse(connID clients.ID, editorID int64, data any) {
	conn, ok := d.clientsTable.Get(connID)
	if !ok {
		return
	}
	body, err := rpc.BuildEditorResponse(editorID, data)
	if err != nil {
		logging.Error("encode response to client %d: %v", connID, err)
		return
	}
	_ = conn.Write(framer.FrameEditor(body))
}

// broadcast writes a `[{method, params}]` notification to every connected
// editor (spec.md §4.7: publishDiagnostics/applyEdit fan-out).
func (d *Daemon) broadcast(method string, params any) {
	body, err := rpc.BuildEditorNotification(method, params)
	if err != nil {
		logging.Debug("broadcast %s: encode: %v", method, err)
		return
	}
	framed := framer.FrameEditor(body)
	for _, c := range d.clientsTable.All() {
		_ = c.Write(framed)
	}
}

// flushDeferred replays every still-fresh deferred entry in arrival order,
// skipping any whose originating connection has since disconnected
// (spec.md §4.8, §8 invariant 5 "Deferral & replay").
func (d *Daemon) flushDeferred() {
	for _, entry := range d.deferredQ.Flush() {
		if _, ok := d.clientsTable.Get(entry.ClientID); !ok {
			continue
		}
		d.handleConnLine(entry.ClientID, entry.RawLine)
	}
}

// handleLspMessage routes one parsed message from the LSP child for key
// (spec.md §4.7 "LSP Message Routing").
func (d *Daemon) handleLspMessage(key string, msg any, err error) {
	if err != nil {
		logging.Debug("framing error from %s: %v", key, err)
		return
	}

	client, ok := d.registry.Lookup(key)
	if !ok {
		return
	}

	switch m := msg.(type) {
	case rpc.LSPResponse:
		d.handleLspResponse(key, client, m)
	case rpc.LSPNotification:
		d.handleLspNotification(key, m)
	case rpc.LSPServerRequest:
		d.handleLspServerRequest(client, m)
	}
}

// handleLspResponse distinguishes the client's own `initialize` reply from
// a response correlated to an editor request (spec.md §4.3/§4.4).
func (d *Daemon) handleLspResponse(key string, client *lspclient.Client, resp rpc.LSPResponse) {
	if method, ok := client.TakeOutstandingMethod(resp.ID); ok && method == "initialize" {
		d.handleInitializeResponse(key, client, resp)
		return
	}

	pending, ok := d.correlator.TakeLspRequest(resp.ID)
	if !ok {
		logging.Debug("unmatched LSP response id=%d from %s", resp.ID, key)
		return
	}
	if pending.EditorID == nil {
		return
	}

	if resp.Error != nil {
		logging.Debug("%s error from %s: %s", pending.Method, key, resp.Error.Message)
		d.writeResponse(pending.ClientID, *pending.EditorID, nil)
		return
	}

	var data any = resp.Result
	if isGotoMethod(pending.Method) {
		loc, err := transform.GotoLocation(resp.Result, pending.SSHHost)
		if err != nil {
			logging.Debug("goto transform for %s: %v", pending.Method, err)
		}
		data = loc
	}
	d.writeResponse(pending.ClientID, *pending.EditorID, data)
}

// handleInitializeResponse marks the client ready and replays any didOpen
// calls queued while it was initializing (spec.md §4.4 "Replay on ready").
func (d *Daemon) handleInitializeResponse(key string, client *lspclient.Client, resp rpc.LSPResponse) {
	if resp.Error != nil {
		logging.Error("initialize failed for %s: %s", key, resp.Error.Message)
		if c, ok := d.registry.RemoveClient(key); ok {
			_ = c.Kill()
		}
		delete(d.relayed, key)
		d.registry.MarkSpawnFailed(key, resp.Error.Message)
		return
	}

	opens, err := d.registry.HandleInitializeResponse(key)
	if err != nil {
		logging.Debug("mark %s ready: %v", key, err)
	}
	d.stats.LspSpawns++

	for _, open := range opens {
		params := map[string]any{
			"textDocument": map[string]any{
				"uri":        open.URI,
				"languageId": open.LanguageID,
				"version":    open.Version,
				"text":       open.Text,
			},
		}
		_ = client.SendNotification("textDocument/didOpen", params)
	}

	if d.indexing.AllZero() {
		d.flushDeferred()
	}
}

// handleLspNotification covers the server-pushed notifications spec.md
// §4.7 names: `$/progress` (indexing counters) and `publishDiagnostics`
// (broadcast to every editor).
func (d *Daemon) handleLspNotification(key string, note rpc.LSPNotification) {
	switch note.Method {
	case "$/progress":
		d.handleProgress(key, note.Params)
	case "textDocument/publishDiagnostics":
		d.broadcast("diagnostics", note.Params)
	default:
		logging.Debug("unhandled LSP notification %s from %s", note.Method, key)
	}
}

// handleProgress implements the indexing-counter state machine spec.md
// §4.7 describes: begin increments and remembers a title, report logs
// progress, end decrements and flushes the deferred queue once every
// language's counter is back at zero.
func (d *Daemon) handleProgress(key string, params json.RawMessage) {
	p := gjson.ParseBytes(params)
	token := p.Get("token").String()
	value := p.Get("value")
	language := languageFromKey(key)

	switch value.Get("kind").String() {
	case "begin":
		title := value.Get("title").String()
		d.indexing.Begin(language, token, title)
		logging.Debug("%s: indexing started (%s)", language, title)

	case "report":
		title, _ := d.indexing.Title(token)
		logging.Debug("%s: %s %s %d%%", language, title, value.Get("message").String(), value.Get("percentage").Int())

	case "end":
		if d.indexing.End(language, token) {
			d.flushDeferred()
		}
	}
}

// handleLspServerRequest answers a server-initiated request: `applyEdit`
// gets a real ack plus a broadcast to editors, the registration RPCs and
// anything else get a bare `null` (spec.md §4.7, §9 Open Question 3).
func (d *Daemon) handleLspServerRequest(client *lspclient.Client, req rpc.LSPServerRequest) {
	switch req.Method {
	case "workspace/applyEdit":
		_ = client.SendResponse(req.ID, map[string]any{"applied": true})
		d.broadcast("applyEdit", req.Params)
	default:
		logging.Debug("unhandled server request %s from %s", req.Method, client.Key)
		_ = client.SendResponse(req.ID, nil)
	}
}

// handleLspClosed is the "LSP death" path (spec.md §7): log the tail of
// stderr, notify connected editors, and drop the client from the pool.
func (d *Daemon) handleLspClosed(key string) {
	client, ok := d.registry.RemoveClient(key)
	if !ok {
		return
	}
	delete(d.relayed, key)
	logging.Critical("language server %s exited: %s", key, strings.TrimSpace(client.StderrTail()))
}

// isGotoMethod reports whether method is one of the four goto_* LSP
// methods, whose result needs transform.GotoLocation's flattening rather
// than a raw passthrough (spec.md §4.6 "goto_* transformation").
func isGotoMethod(method string) bool {
	switch method {
	case "textDocument/definition", "textDocument/declaration",
		"textDocument/typeDefinition", "textDocument/implementation":
		return true
	default:
		return false
	}
}

// languageFromKey extracts the `<language>` half of a client key built by
// registry.ClientKey (spec.md §3 "Client Key" is `language + "\x00" +
// workspace_uri`).
func languageFromKey(key string) string {
	if i := strings.IndexByte(key, 0); i >= 0 {
		return key[:i]
	}
	return key
}
