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
package framer

import "bytes"

// EditorFramer splits a byte stream into newline-delimited lines (spec.md
// §4.1 "Editor"). Empty lines are skipped; each returned line has
// surrounding whitespace trimmed. A trailing partial line is retained
// across Feed calls.
type EditorFramer struct {
	buf []byte
}

// NewEditorFramer returns an empty editor-side framer.
func NewEditorFramer() *EditorFramer {
	return &EditorFramer{}
}

// Feed appends chunk and returns every complete, non-empty, trimmed line
// extracted as a result.
func (f *EditorFramer) Feed(chunk []byte) [][]byte {
	f.buf = append(f.buf, chunk...)

	var lines [][]byte
	for {
		idx := bytes.IndexByte(f.buf, '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimSpace(f.buf[:idx])
		f.buf = f.buf[idx+1:]
		if len(line) == 0 {
			continue
		}
		out := make([]byte, len(line))
		copy(out, line)
		lines = append(lines, out)
	}
	return lines
}

// FrameEditor appends the newline delimiter for one outgoing JSON array.
func FrameEditor(body []byte) []byte {
	out := make([]byte, 0, len(body)+1)
	out = append(out, body...)
	out = append(out, '\n')
	return out
}
