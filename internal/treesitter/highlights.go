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

// Highlight is one syntax-highlighting span, scope named after the
// capture that produced it (the nvim/Neovim-style "@keyword", "@string",
// "@comment" vocabulary standard tree-sitter highlight queries use).
type Highlight struct {
	Scope       string `json:"scope"`
	StartLine   int    `json:"start_line"`
	StartColumn int    `json:"start_column"`
	EndLine     int    `json:"end_line"`
	EndColumn   int    `json:"end_column"`
}

// Highlights runs the "highlights" query over path's stored tree, one
// Highlight per capture (spec.md §4.9 "query operations": "highlights").
func (m *Manager) Highlights(filePath string) ([]Highlight, error) {
	query, bt, ok := m.queryFor(filePath, "highlights")
	if !ok {
		return nil, nil
	}

	names := query.CaptureNames()
	var out []Highlight
	for match := range allMatches(query, bt.Tree.RootNode(), bt.Source) {
		for _, cap := range match.Captures {
			start := byteToPosition(bt.Source, cap.Node.StartByte())
			end := byteToPosition(bt.Source, cap.Node.EndByte())
			out = append(out, Highlight{
				Scope:       names[cap.Index],
				StartLine:   start.Line,
				StartColumn: start.Column,
				EndLine:     end.Line,
				EndColumn:   end.Column,
			})
		}
	}
	return out, nil
}
