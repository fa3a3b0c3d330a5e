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
package treesitter

import (
	"iter"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// allMatches iterates every match of query over root, always using a
// fresh cursor — QueryCursor carries state across Matches() calls and
// isn't safe to reuse or share.
func allMatches(query *ts.Query, root *ts.Node, source []byte) iter.Seq[*ts.QueryMatch] {
	cursor := ts.NewQueryCursor()
	matches := cursor.Matches(query, root, source)
	return func(yield func(*ts.QueryMatch) bool) {
		defer cursor.Close()
		for {
			m := matches.Next()
			if m == nil {
				return
			}
			if !yield(m) {
				return
			}
		}
	}
}

// captureNode returns the first node in match captured under captureName,
// or (nil, false) if the query didn't capture it here.
func captureNode(query *ts.Query, match *ts.QueryMatch, captureName string) (*ts.Node, bool) {
	names := query.CaptureNames()
	for _, cap := range match.Captures {
		if names[cap.Index] == captureName {
			node := cap.Node
			return &node, true
		}
	}
	return nil, false
}

// Position is a zero-based line/column pair, matching spec.md's editor-
// facing position shape used throughout §4.6/§4.9.
type Position struct {
	Line   int
	Column int
}

// byteToPosition converts a byte offset into source to a line/column
// pair, scanning from the start (source files here are buffer-sized, not
// megabytes, so a linear scan is fine — the same approach the teacher's
// queries.go uses).
func byteToPosition(source []byte, offset uint) Position {
	line, col := 0, 0
	for i := 0; i < int(offset) && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return Position{Line: line, Column: col}
}
