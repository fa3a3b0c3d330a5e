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

import "strings"

// TextObject is one selectable region, named after a Kana/nvim-textobjects
// style capture such as "function.outer", "function.inner", "class.outer".
type TextObject struct {
	Name        string `json:"name"`
	StartLine   int    `json:"start_line"`
	StartColumn int    `json:"start_column"`
	EndLine     int    `json:"end_line"`
	EndColumn   int    `json:"end_column"`
}

// TextObjects runs the "textobjects" query over path's stored tree. Every
// capture named "@textobject.<name>" becomes one TextObject named <name>.
func (m *Manager) TextObjects(filePath string) ([]TextObject, error) {
	query, bt, ok := m.queryFor(filePath, "textobjects")
	if !ok {
		return nil, nil
	}

	names := query.CaptureNames()
	var out []TextObject
	for match := range allMatches(query, bt.Tree.RootNode(), bt.Source) {
		for _, cap := range match.Captures {
			capName := names[cap.Index]
			if !strings.HasPrefix(capName, "textobject.") {
				continue
			}
			start := byteToPosition(bt.Source, cap.Node.StartByte())
			end := byteToPosition(bt.Source, cap.Node.EndByte())
			out = append(out, TextObject{
				Name:        strings.TrimPrefix(capName, "textobject."),
				StartLine:   start.Line,
				StartColumn: start.Column,
				EndLine:     end.Line,
				EndColumn:   end.Column,
			})
		}
	}
	return out, nil
}
