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
	"strconv"
	"strings"
)

// grepOutputCap bounds how much of rg's stdout is read (spec.md §4.10:
// "256 KiB output cap").
const grepOutputCap = 256 * 1024

// grepMaxResults caps the parsed result count (spec.md §4.10: "capped at
// 50 results").
const grepMaxResults = 50

// GrepMatch is one parsed `rg --vimgrep` line.
type GrepMatch struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Text   string `json:"text"`
}

// Grep runs `rg --vimgrep` synchronously in cwd and returns up to
// grepMaxResults matches (spec.md §4.10 "picker_grep_query").
func Grep(cwd, query string) ([]GrepMatch, error) {
	cmd := exec.Command("rg",
		"--vimgrep",
		"--max-count", "5",
		"--max-columns", "200",
		"--max-filesize", "1M",
		"--", query,
	)
	cmd.Dir = cwd

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	limited := io.LimitReader(stdout, grepOutputCap)
	matches := parseVimgrep(limited)

	// rg exits 1 when there are no matches; that's not an error for us.
	_ = cmd.Wait()

	return matches, nil
}

func parseVimgrep(r io.Reader) []GrepMatch {
	var matches []GrepMatch
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 256*1024)
	for scanner.Scan() && len(matches) < grepMaxResults {
		line := scanner.Text()
		m, ok := parseVimgrepLine(line)
		if !ok {
			continue
		}
		matches = append(matches, m)
	}
	return matches
}

// parseVimgrepLine splits a `path:line:column:text` line. The text field
// may itself contain colons, so only the first three are treated as
// delimiters.
func parseVimgrepLine(line string) (GrepMatch, bool) {
	parts := strings.SplitN(line, ":", 4)
	if len(parts) != 4 {
		return GrepMatch{}, false
	}
	lineNo, err := strconv.Atoi(parts[1])
	if err != nil {
		return GrepMatch{}, false
	}
	col, err := strconv.Atoi(parts[2])
	if err != nil {
		return GrepMatch{}, false
	}
	return GrepMatch{
		File:   parts[0],
		Line:   lineNo,
		Column: col,
		Text:   strings.TrimRight(parts[3], "\r\n"),
	}, true
}
