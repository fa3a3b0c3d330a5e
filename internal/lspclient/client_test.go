package lspclient_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lspbroker.dev/lspbroker/internal/lspclient"
	"lspbroker.dev/lspbroker/internal/rpc"
)

// cat echoes stdin to stdout, which is enough to exercise the client's
// framing/write/read plumbing without a real language server.
func TestClient_SendRequest_EchoesBackThroughFraming(t *testing.T) {
	ids := lspclient.NewIDAllocator()
	c, err := lspclient.Spawn("go\x00", "cat", nil, ids, 0)
	require.NoError(t, err)
	defer func() { _ = c.Kill() }()

	id, err := c.SendRequest("textDocument/hover", map[string]any{"x": 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)

	select {
	case ev := <-c.Events():
		require.NoError(t, ev.Err)
		req, ok := ev.Message.(rpc.LSPServerRequest)
		require.True(t, ok, "cat echoes our own request back as a same-shaped message")
		assert.Equal(t, "textDocument/hover", req.Method)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echoed message")
	}
}

func TestIDAllocator_NextIsConsecutive(t *testing.T) {
	ids := lspclient.NewIDAllocator()
	a := ids.Next()
	b := ids.Next()
	assert.NotEqual(t, a, b)
	assert.Equal(t, a+1, b)
}
