package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lspbroker.dev/lspbroker/internal/clients"
	"lspbroker.dev/lspbroker/internal/config"
	"lspbroker.dev/lspbroker/internal/correlator"
	"lspbroker.dev/lspbroker/internal/dispatch"
	"lspbroker.dev/lspbroker/internal/picker"
	"lspbroker.dev/lspbroker/internal/platform"
	"lspbroker.dev/lspbroker/internal/registry"
	"lspbroker.dev/lspbroker/internal/treesitter"
)

func TestDispatch_PickerInit_ReturnsOk(t *testing.T) {
	d := newTestDeps(t)
	params := []byte(`{"cwd":"/tmp"}`)
	result := dispatch.Dispatch(d, clients.ID(1), 1, "picker_init", params)
	assert.Equal(t, dispatch.KindData, result.Kind)
	t.Cleanup(d.Picker.Close)
}

func TestDispatch_PickerFileQuery_EmptyQueryReturnsNoMatches(t *testing.T) {
	d := newTestDeps(t)
	d.Picker.Init("/tmp", nil)
	t.Cleanup(d.Picker.Close)

	result := dispatch.Dispatch(d, clients.ID(1), 1, "picker_file_query", []byte(`{"query":""}`))
	require.Equal(t, dispatch.KindData, result.Kind)
	assert.Empty(t, result.Data)
}

func TestDispatch_BufferSymbols_NoFileReturnsEmpty(t *testing.T) {
	d := newTestDeps(t)
	result := dispatch.Dispatch(d, clients.ID(1), 1, "buffer_symbols", []byte(`{}`))
	assert.Equal(t, dispatch.KindEmpty, result.Kind)
}

func TestDispatch_BufferSymbols_UnparsedFileReturnsData(t *testing.T) {
	d := newTestDeps(t)
	result := dispatch.Dispatch(d, clients.ID(1), 1, "buffer_symbols", []byte(`{"file":"/tmp/x.ts"}`))
	require.Equal(t, dispatch.KindData, result.Kind, "no stored tree yet, but the query itself doesn't error")
}

func TestDispatch_FileOpen_ParsesBufferForTreeSitter(t *testing.T) {
	table := config.NewTable()
	table.SetOverlay([]config.ServerConfig{{
		Language:       "typescript",
		Command:        "cat",
		LanguageID:     "typescript",
		FileExtensions: []string{".ts"},
	}})
	d := &dispatch.Deps{
		Registry:   registry.New(platform.NewOSFileSystem(), table, 0),
		Correlator: correlator.New(),
		Indexing:   dispatch.NewIndexing(),
		Picker:     picker.New(),
		Treesitter: treesitter.NewManager(),
	}

	params := []byte(`{"file":"/tmp/sample.ts","text":"const x = 1;"}`)
	dispatch.Dispatch(d, clients.ID(1), 1, "file_open", params)

	source, ok := d.Treesitter.GetSource("/tmp/sample.ts")
	require.True(t, ok)
	assert.Equal(t, "const x = 1;", string(source))

	t.Cleanup(func() {
		cfg, ok := d.Registry.ServerConfigFor("/tmp/sample.ts")
		require.True(t, ok)
		if c, ok := d.Registry.Lookup(d.Registry.ResolveKey(cfg, "/tmp/sample.ts")); ok {
			_ = c.Kill()
		}
	})
}
