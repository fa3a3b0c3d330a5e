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
package picker

import (
	"bufio"
	"io"
	"os/exec"
)

// MaxIndexedPaths bounds the in-memory file index (spec.md §5 "Resource
// bounds": "picker file index (50,000 paths)").
const MaxIndexedPaths = 50_000

// scannerCommands is the fallback chain spec.md §4.10 names: "fd
// preferred, then rg --files, then find".
var scannerCommands = [][]string{
	{"fd", "--type", "f"},
	{"rg", "--files"},
	{"find", ".", "-type", "f"},
}

// Scanner runs the first available external file-enumeration command in
// cwd and streams its stdout lines to Paths, stopping at MaxIndexedPaths.
type Scanner struct {
	cmd   *exec.Cmd
	Paths chan string
	done  chan struct{}
	err   error
}

// StartScanner tries each command in scannerCommands in turn, using the
// first that launches successfully (spec.md §4.10 "picker_init").
func StartScanner(cwd string) (*Scanner, error) {
	var lastErr error
	for _, args := range scannerCommands {
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Dir = cwd
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			lastErr = err
			continue
		}
		if err := cmd.Start(); err != nil {
			lastErr = err
			continue
		}

		s := &Scanner{
			cmd:   cmd,
			Paths: make(chan string, 256),
			done:  make(chan struct{}),
		}
		go s.read(stdout)
		return s, nil
	}
	return nil, lastErr
}

func (s *Scanner) read(stdout io.Reader) {
	defer close(s.Paths)
	defer close(s.done)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	count := 0
	for scanner.Scan() && count < MaxIndexedPaths {
		path := scanner.Text()
		if path == "" {
			continue
		}
		s.Paths <- path
		count++
	}
	s.err = scanner.Err()
}

// Done is closed once the scanner's output has been fully drained (EOF or
// the MaxIndexedPaths cap was hit).
func (s *Scanner) Done() <-chan struct{} { return s.done }

// Err returns any error the underlying scan encountered, valid after Done
// is closed.
func (s *Scanner) Err() error { return s.err }

// Stop kills the scanner's child process, used by picker_close.
func (s *Scanner) Stop() error {
	if s.cmd.Process == nil {
		return nil
	}
	return s.cmd.Process.Kill()
}
