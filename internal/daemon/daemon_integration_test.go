package daemon

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lspbroker.dev/lspbroker/internal/config"
	"lspbroker.dev/lspbroker/internal/platform"
)

func dialWithRetry(t *testing.T, path string) net.Conn {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.Dial("unix", path)
		if err == nil {
			return conn
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("could not dial %s", path)
	return nil
}

func TestDaemon_IdleTimeout_ExitsCleanly(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	cfg := config.Defaults("lspbroker-idle-test")
	cfg.IdleTimeout = 150 * time.Millisecond
	d := New(cfg, config.NewTable(), platform.NewOSFileSystem(), platform.NewRealTimeProvider())

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("daemon did not exit on idle timeout")
	}
}

// This exercises the real socket → accept → relay → dispatch path end to
// end: a fresh goto_definition call always spawns the client and answers
// Initializing (spec.md §4.4 "spawned → initializing"), so no response is
// written back to the editor for it.
func TestDaemon_GotoDefinition_SpawnsClientWithoutImmediateResponse(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	table := config.NewTable()
	table.SetOverlay([]config.ServerConfig{{
		Language:       "catlang",
		Command:        "cat",
		LanguageID:     "catlang",
		FileExtensions: []string{".cat"},
	}})
	cfg := config.Defaults("lspbroker-goto-test")
	cfg.IdleTimeout = 5 * time.Second
	d := New(cfg, table, platform.NewOSFileSystem(), platform.NewRealTimeProvider())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	conn := dialWithRetry(t, config.SocketPath(cfg.SocketName))
	defer conn.Close()

	line := []byte(`[1,{"method":"goto_definition","params":{"file":"/tmp/sample.cat","line":1,"column":1}}]` + "\n")
	_, err := conn.Write(line)
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	buf := make([]byte, 64)
	_, err = conn.Read(buf)
	assert.Error(t, err, "no response should have been written back for an initializing spawn")

	cfgEntry, ok := d.registry.ServerConfigFor("/tmp/sample.cat")
	require.True(t, ok)
	key := d.registry.ResolveKey(cfgEntry, "/tmp/sample.cat")

	var spawned bool
	for i := 0; i < 100; i++ {
		if _, ok := d.registry.Lookup(key); ok {
			spawned = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.True(t, spawned, "expected a client to have been spawned for %q", key)

	cancel()
	<-done
	for _, c := range d.registry.Clients() {
		_ = c.Kill()
	}
}
