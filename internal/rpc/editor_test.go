package rpc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lspbroker.dev/lspbroker/internal/rpc"
)

func noExprIDs(int64) bool { return false }

func TestParseEditorLine_Request(t *testing.T) {
	msg, err := rpc.ParseEditorLine([]byte(`[1,{"method":"hover","params":{"file":"/a"}}]`), noExprIDs)
	require.NoError(t, err)
	req, ok := msg.(rpc.EditorRequest)
	require.True(t, ok)
	assert.EqualValues(t, 1, req.ID)
	assert.Equal(t, "hover", req.Method)
}

func TestParseEditorLine_Notification(t *testing.T) {
	msg, err := rpc.ParseEditorLine([]byte(`[{"method":"did_save","params":{}}]`), noExprIDs)
	require.NoError(t, err)
	note, ok := msg.(rpc.EditorNotification)
	require.True(t, ok)
	assert.Equal(t, "did_save", note.Method)
}

func TestParseEditorLine_NegativeIDIsResponse(t *testing.T) {
	msg, err := rpc.ParseEditorLine([]byte(`[-7,{"ok":true}]`), noExprIDs)
	require.NoError(t, err)
	resp, ok := msg.(rpc.EditorResponse)
	require.True(t, ok)
	assert.EqualValues(t, -7, resp.ID)
}

func TestParseEditorLine_PositiveIDIsResponseWhenOutstanding(t *testing.T) {
	isOutstanding := func(id int64) bool { return id == 3 }
	msg, err := rpc.ParseEditorLine([]byte(`[3,["file1.go","file2.go"]]`), isOutstanding)
	require.NoError(t, err)
	resp, ok := msg.(rpc.EditorResponse)
	require.True(t, ok)
	assert.EqualValues(t, 3, resp.ID)
}

func TestParseEditorLine_PositiveIDIsRequestWhenNotOutstanding(t *testing.T) {
	msg, err := rpc.ParseEditorLine([]byte(`[3,{"method":"hover","params":{}}]`), noExprIDs)
	require.NoError(t, err)
	_, ok := msg.(rpc.EditorRequest)
	assert.True(t, ok)
}

func TestParseEditorLine_Malformed(t *testing.T) {
	_, err := rpc.ParseEditorLine([]byte(`{"not":"an array"}`), noExprIDs)
	assert.ErrorIs(t, err, rpc.ErrMalformedEditorLine)
}

func TestBuildEditorResponse_NegatesRequestID(t *testing.T) {
	out, err := rpc.BuildEditorResponse(1, map[string]any{"file": "/a", "line": 3, "column": 7})
	require.NoError(t, err)
	assert.JSONEq(t, `[-1,{"file":"/a","line":3,"column":7}]`, string(out))
}

func TestBuildEditorCall_ExprWithID(t *testing.T) {
	out, err := rpc.BuildEditorCall("expr", "g:recent_files", 42)
	require.NoError(t, err)
	assert.JSONEq(t, `["expr","g:recent_files",42]`, string(out))
}
