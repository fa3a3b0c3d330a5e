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

func newTestDeps(t *testing.T) *dispatch.Deps {
	t.Helper()
	table := config.NewTable()
	table.SetOverlay([]config.ServerConfig{{
		Language:       "catlang",
		Command:        "cat",
		LanguageID:     "catlang",
		FileExtensions: []string{".cat"},
	}})
	reg := registry.New(platform.NewOSFileSystem(), table, 0)
	return &dispatch.Deps{
		Registry:   reg,
		Correlator: correlator.New(),
		Indexing:   dispatch.NewIndexing(),
		Picker:     picker.New(),
		Treesitter: treesitter.NewManager(),
	}
}

func TestDispatch_UnknownMethod_ReturnsEmpty(t *testing.T) {
	d := newTestDeps(t)
	result := dispatch.Dispatch(d, clients.ID(1), 1, "not_a_real_method", nil)
	assert.Equal(t, dispatch.KindEmpty, result.Kind)
}

func TestDispatch_UnrecognizedExtension_ReturnsEmpty(t *testing.T) {
	d := newTestDeps(t)
	params := []byte(`{"file":"/tmp/nope.zzz","line":1,"column":1}`)
	result := dispatch.Dispatch(d, clients.ID(1), 1, "hover", params)
	assert.Equal(t, dispatch.KindEmpty, result.Kind)
}

// First call to a fresh client always comes back Initializing: the client
// was just spawned and `initialize` hasn't round-tripped yet (spec.md
// §4.4: "spawned → initializing").
func TestDispatch_GotoDefinition_FirstCallSpawnsAndDefers(t *testing.T) {
	d := newTestDeps(t)
	params := []byte(`{"file":"/tmp/sample.cat","line":5,"column":2}`)

	result := dispatch.Dispatch(d, clients.ID(1), 1, "goto_definition", params)
	require.Equal(t, dispatch.KindInitializing, result.Kind)

	client, ok := d.Registry.Lookup(d.Registry.ResolveKey(mustConfig(t, d), "/tmp/sample.cat"))
	require.True(t, ok)
	t.Cleanup(func() { _ = client.Kill() })
}

func mustConfig(t *testing.T, d *dispatch.Deps) config.ServerConfig {
	t.Helper()
	cfg, ok := d.Registry.ServerConfigFor("/tmp/sample.cat")
	require.True(t, ok)
	return cfg
}

// A file with no workspace marker above it (a library/toolchain path, or
// just a directory with no manifest) must reuse whatever client already
// serves its language rather than spawn a second one under the bare
// "<language>\0" key (spec.md §3 "Client Key").
func TestDispatch_NoMarkerFile_ReusesExistingLanguageClient(t *testing.T) {
	fs := platform.NewMapFileSystem(nil)
	fs.AddFile("/home/me/proj/cat.toml", "", 0o644)
	fs.AddFile("/home/me/proj/main.cat", "hi", 0o644)
	fs.AddFile("/home/me/lib/vendor.cat", "hi", 0o644)

	table := config.NewTable()
	table.SetOverlay([]config.ServerConfig{{
		Language:         "catlang",
		Command:          "cat",
		LanguageID:       "catlang",
		FileExtensions:   []string{".cat"},
		WorkspaceMarkers: []string{"cat.toml"},
	}})
	reg := registry.New(fs, table, 0)
	d := &dispatch.Deps{
		Registry:   reg,
		Correlator: correlator.New(),
		Indexing:   dispatch.NewIndexing(),
		Picker:     picker.New(),
		Treesitter: treesitter.NewManager(),
	}

	result := dispatch.Dispatch(d, clients.ID(1), 1, "goto_definition", []byte(`{"file":"/home/me/proj/main.cat","line":1,"column":1}`))
	require.Equal(t, dispatch.KindInitializing, result.Kind)

	workspaceKey := registry.ClientKey("catlang", "file:///home/me/proj")
	client, ok := reg.Lookup(workspaceKey)
	require.True(t, ok)
	t.Cleanup(func() { _ = client.Kill() })

	result2 := dispatch.Dispatch(d, clients.ID(1), 2, "goto_definition", []byte(`{"file":"/home/me/lib/vendor.cat","line":1,"column":1}`))
	assert.Equal(t, dispatch.KindInitializing, result2.Kind)

	assert.Len(t, reg.Clients(), 1, "no-marker file must reuse the existing catlang client, not spawn a second one")
	_, bareExists := reg.Lookup(registry.ClientKey("catlang", ""))
	assert.False(t, bareExists, "no client should ever be spawned under the bare language-only key when one already exists")
}

func TestDispatch_IndexingDefersQueryMethods(t *testing.T) {
	d := newTestDeps(t)
	d.Indexing.Begin("catlang", "tok1", "Indexing")

	params := []byte(`{"file":"/tmp/sample.cat","line":1,"column":1}`)
	result := dispatch.Dispatch(d, clients.ID(1), 1, "hover", params)
	assert.Equal(t, dispatch.KindInitializing, result.Kind, "hover should be deferred while catlang is indexing")
}
