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
package lspclient

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"lspbroker.dev/lspbroker/internal/framer"
	"lspbroker.dev/lspbroker/internal/logging"
	"lspbroker.dev/lspbroker/internal/rpc"
)

// State is the per-client lifecycle spec.md §4.4 describes:
// spawned → initializing → ready → dead.
type State int

const (
	StateSpawned State = iota
	StateInitializing
	StateReady
	StateDead
)

func (s State) String() string {
	switch s {
	case StateSpawned:
		return "spawned"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

const stderrTailCap = 4 << 10 // 4 KiB, spec.md §7 "LSP death"

// Event is one item read_messages() would yield: a parsed LSP message or a
// framing error that should be logged and dropped (spec.md §7 "Protocol").
type Event struct {
	Message any // rpc.LSPResponse | rpc.LSPNotification | rpc.LSPServerRequest
	Err     error
}

// Client owns one spawned language-server child: its stdio pipes, an LSP
// framer, and the locally-tracked map from outstanding request id to the
// method that was sent, used to interpret responses without consulting the
// full correlator (spec.md §3 "LSP Client").
//
// Only the daemon's single event-loop goroutine may call the Send* methods
// or read State; the reader goroutine started by spawn only ever writes to
// events and stderrBuf, both synchronized.
type Client struct {
	Key     string
	Command string
	Args    []string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	ids *IDAllocator

	mu              sync.Mutex
	state           State
	outstanding     map[int64]string // request id -> method, spec.md §3
	stderrBuf       bytes.Buffer

	events chan Event
	closed chan struct{}
}

// Spawn launches command with args, piping stdin/stdout/stderr, and starts
// the background reader goroutine. Stderr is kept piped (not discarded) so
// a post-mortem snippet is available on death (spec.md §4.3).
func Spawn(key, command string, args []string, ids *IDAllocator, bufferBytes int) (*Client, error) {
	cmd := exec.Command(command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn %s: %w", command, err)
	}

	c := &Client{
		Key:         key,
		Command:     command,
		Args:        args,
		cmd:         cmd,
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		ids:         ids,
		state:       StateSpawned,
		outstanding: make(map[int64]string),
		events:      make(chan Event, 64),
		closed:      make(chan struct{}),
	}

	go c.readStdout(bufferBytes)
	go c.drainStderr()

	return c, nil
}

// Events returns the channel of parsed LSP messages; the daemon's event
// loop selects on it alongside every other client's Events() and the
// listener/picker fds (spec.md §4.5).
func (c *Client) Events() <-chan Event { return c.events }

// Closed is closed once the stdout reader observes EOF/err (fd HUP/ERR in
// spec.md's poll terms).
func (c *Client) Closed() <-chan struct{} { return c.closed }

func (c *Client) readStdout(bufferBytes int) {
	defer close(c.events)
	defer close(c.closed)

	f := framer.NewLSPFramer(bufferBytes)
	buf := make([]byte, 4096)
	for {
		n, err := c.stdout.Read(buf)
		if n > 0 {
			msgs, ferr := f.Feed(buf[:n])
			for _, body := range msgs {
				parsed, perr := rpc.ParseLSPMessage(body)
				if perr != nil {
					c.events <- Event{Err: perr}
					continue
				}
				c.events <- Event{Message: parsed}
			}
			if ferr != nil {
				c.events <- Event{Err: ferr}
			}
		}
		if err != nil {
			return
		}
	}
}

func (c *Client) drainStderr() {
	buf := make([]byte, 4096)
	for {
		n, err := c.stderr.Read(buf)
		if n > 0 {
			c.mu.Lock()
			c.stderrBuf.Write(buf[:n])
			if c.stderrBuf.Len() > stderrTailCap {
				excess := c.stderrBuf.Len() - stderrTailCap
				c.stderrBuf.Next(excess)
			}
			c.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// StderrTail returns up to 4 KiB of the most recent stderr output, for the
// post-mortem log line spec.md §7 requires on LSP death.
func (c *Client) StderrTail() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stderrBuf.String()
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// SendRequest frames and writes method/params, returning the newly
// allocated id and recording it against method in the outstanding map
// (spec.md §4.3).
func (c *Client) SendRequest(method string, params any) (int64, error) {
	id := c.ids.Next()
	body, err := rpc.BuildLSPRequest(id, method, params)
	if err != nil {
		return 0, err
	}
	if err := c.write(body); err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.outstanding[id] = method
	c.mu.Unlock()
	return id, nil
}

// TakeOutstandingMethod removes and returns the method recorded for id, if
// any (consumed once a response arrives).
func (c *Client) TakeOutstandingMethod(id int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.outstanding[id]
	if ok {
		delete(c.outstanding, id)
	}
	return m, ok
}

// SendNotification is fire-and-forget.
func (c *Client) SendNotification(method string, params any) error {
	body, err := rpc.BuildLSPNotification(method, params)
	if err != nil {
		return err
	}
	return c.write(body)
}

// SendResponse answers a server-initiated request.
func (c *Client) SendResponse(id int64, result any) error {
	body, err := rpc.BuildLSPResponse(id, result)
	if err != nil {
		return err
	}
	return c.write(body)
}

// Initialize sends the `initialize` request with the fixed client
// capabilities object and transitions the client to "initializing".
func (c *Client) Initialize(workspaceURI *string, processID int) (int64, error) {
	id, err := c.SendRequest("initialize", initializeParams(workspaceURI, processID))
	if err != nil {
		return 0, err
	}
	c.setState(StateInitializing)
	return id, nil
}

// MarkReady transitions initializing → ready and sends `initialized`.
func (c *Client) MarkReady() error {
	c.setState(StateReady)
	return c.SendNotification("initialized", struct{}{})
}

// Shutdown sends `shutdown` then `exit`; the daemon does not wait on the
// child (spec.md §5 "Cancellation").
func (c *Client) Shutdown() {
	if _, err := c.SendRequest("shutdown", nil); err != nil {
		logging.Debug("shutdown request to %s failed: %v", c.Key, err)
	}
	if err := c.SendNotification("exit", nil); err != nil {
		logging.Debug("exit notification to %s failed: %v", c.Key, err)
	}
}

func (c *Client) write(body []byte) error {
	_, err := c.stdin.Write(framer.FrameLSP(body))
	return err
}

// Close releases the child's stdio handles. It does not kill the process
// (shutdown/exit already asked it to exit); callers that need a hard kill
// after a HUP should call Kill.
func (c *Client) Close() error {
	_ = c.stdin.Close()
	return nil
}

// Kill forcibly terminates the child process, used when the registry
// removes a client that never reached "ready" or that is being torn down
// without an orderly shutdown.
func (c *Client) Kill() error {
	if c.cmd.Process == nil {
		return nil
	}
	return c.cmd.Process.Kill()
}
