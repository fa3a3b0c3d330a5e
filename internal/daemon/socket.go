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
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

// ErrAlreadyRunning is returned by bindSocket when an existing socket at
// path answers a connection attempt — spec.md §6 / §8 scenario S3: a
// second daemon invocation must detect the live instance and exit cleanly
// rather than stealing its socket.
var ErrAlreadyRunning = errors.New("daemon: another instance is already listening on this socket")

const dialProbeTimeout = 200 * time.Millisecond

// bindSocket implements scenario S3's probe-then-bind sequence: dial the
// existing socket file first; a successful connection means a live daemon
// owns it, so the caller should exit without disturbing it. A failed dial
// means the file (if any) is stale, so it is removed and a fresh listener
// bound in its place.
func bindSocket(path string) (net.Listener, error) {
	if conn, err := net.DialTimeout("unix", path, dialProbeTimeout); err == nil {
		_ = conn.Close()
		return nil, ErrAlreadyRunning
	}

	_ = os.Remove(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", path, err)
	}
	return listener, nil
}
