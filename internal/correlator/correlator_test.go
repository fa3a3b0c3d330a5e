package correlator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lspbroker.dev/lspbroker/internal/clients"
	"lspbroker.dev/lspbroker/internal/correlator"
)

func TestCorrelator_RecordAndTakeLspRequest(t *testing.T) {
	c := correlator.New()
	editorID := int64(7)
	c.RecordLspRequest(100, correlator.PendingLspRequest{
		EditorID: &editorID,
		Method:   "textDocument/definition",
		ClientID: clients.ID(1),
	})

	req, ok := c.TakeLspRequest(100)
	assert.True(t, ok)
	assert.Equal(t, "textDocument/definition", req.Method)
	assert.Equal(t, clients.ID(1), req.ClientID)

	_, ok = c.TakeLspRequest(100)
	assert.False(t, ok, "a taken request should not be retrievable again")
}

func TestCorrelator_TakeLspRequest_UnknownIDIsAbsent(t *testing.T) {
	c := correlator.New()
	_, ok := c.TakeLspRequest(999)
	assert.False(t, ok)
}

func TestCorrelator_EditorExprRoundTrip(t *testing.T) {
	c := correlator.New()
	c.RecordEditorExpr(5, correlator.PendingEditorExpr{ClientID: clients.ID(1), Purpose: "cursor"})

	assert.True(t, c.IsOutstandingExprID(5))
	ctx, ok := c.TakeEditorExpr(5)
	assert.True(t, ok)
	assert.Equal(t, "cursor", ctx.Purpose)
	assert.False(t, c.IsOutstandingExprID(5), "taken expr id should no longer be outstanding")
}

func TestCorrelator_PurgeClient_RemovesOnlyThatClientsEntries(t *testing.T) {
	c := correlator.New()
	c.RecordLspRequest(1, correlator.PendingLspRequest{Method: "a", ClientID: clients.ID(1)})
	c.RecordLspRequest(2, correlator.PendingLspRequest{Method: "b", ClientID: clients.ID(2)})
	c.RecordEditorExpr(10, correlator.PendingEditorExpr{ClientID: clients.ID(1)})

	c.PurgeClient(clients.ID(1))

	_, ok := c.TakeLspRequest(1)
	assert.False(t, ok, "client 1's lsp request should be purged")
	_, ok = c.TakeLspRequest(2)
	assert.True(t, ok, "client 2's lsp request should survive")
	assert.False(t, c.IsOutstandingExprID(10), "client 1's expr should be purged")
}
