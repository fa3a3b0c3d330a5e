package framer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lspbroker.dev/lspbroker/internal/framer"
)

func TestLSPFramer_RoundTrip(t *testing.T) {
	f := framer.NewLSPFramer(0)
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"hover"}`)
	msgs, err := f.Feed(framer.FrameLSP(body))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, body, msgs[0])
}

func TestLSPFramer_Concatenated(t *testing.T) {
	f := framer.NewLSPFramer(0)
	b1 := []byte(`{"a":1}`)
	b2 := []byte(`{"b":2}`)
	framed := append(framer.FrameLSP(b1), framer.FrameLSP(b2)...)

	msgs, err := f.Feed(framed)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, b1, msgs[0])
	assert.Equal(t, b2, msgs[1])
}

func TestLSPFramer_ChunkedArbitrarily(t *testing.T) {
	f := framer.NewLSPFramer(0)
	b1 := []byte(`{"a":1}`)
	b2 := []byte(`{"b":2}`)
	framed := append(framer.FrameLSP(b1), framer.FrameLSP(b2)...)

	var got [][]byte
	for i := 0; i < len(framed); i++ {
		msgs, err := f.Feed(framed[i : i+1])
		require.NoError(t, err)
		got = append(got, msgs...)
	}
	require.Len(t, got, 2)
	assert.Equal(t, b1, got[0])
	assert.Equal(t, b2, got[1])
}

func TestLSPFramer_MalformedHeader(t *testing.T) {
	f := framer.NewLSPFramer(0)
	_, err := f.Feed([]byte("Content-Length: notanumber\r\n\r\n{}"))
	assert.ErrorIs(t, err, framer.ErrMalformedHeader)
}

func TestLSPFramer_BufferTooLarge(t *testing.T) {
	f := framer.NewLSPFramer(16)
	big := make([]byte, 1024)
	_, err := f.Feed(framer.FrameLSP(big))
	assert.ErrorIs(t, err, framer.ErrBufferTooLarge)
}

func TestLSPFramer_PartialBodyBuffers(t *testing.T) {
	f := framer.NewLSPFramer(0)
	framed := framer.FrameLSP([]byte(`{"hello":"world"}`))
	msgs, err := f.Feed(framed[:len(framed)-5])
	require.NoError(t, err)
	assert.Empty(t, msgs)

	msgs, err = f.Feed(framed[len(framed)-5:])
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestFrameLSP_HeaderShape(t *testing.T) {
	framed := framer.FrameLSP([]byte("{}"))
	assert.Equal(t, "Content-Length: 2\r\n\r\n{}", string(framed))
}
