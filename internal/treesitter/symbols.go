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

// Symbol is the editor-facing shape spec.md §4.9 names: "symbols include
// {name, kind, file, selection_line, selection_column, end_line}".
type Symbol struct {
	Name            string `json:"name"`
	Kind            string `json:"kind"`
	File            string `json:"file"`
	SelectionLine   int    `json:"selection_line"`
	SelectionColumn int    `json:"selection_column"`
	EndLine         int    `json:"end_line"`
}

// captureKind is the fixed capture-name→LSP-kind table spec.md §4.9
// mentions, here keyed by the query's own capture vocabulary (the suffix
// after "symbol.") rather than the LSP wire integers, since the queries
// produce the kind directly.
var captureKind = map[string]string{
	"class":     "Class",
	"interface": "Interface",
	"enum":      "Enum",
	"struct":    "Struct",
	"function":  "Function",
	"method":    "Method",
	"property":  "Property",
	"field":     "Field",
	"variable":  "Variable",
	"constant":  "Constant",
}

// Symbols runs the "symbols" query over path's stored tree and returns
// every captured declaration (spec.md §4.9 "query operations").
func (m *Manager) Symbols(filePath string) ([]Symbol, error) {
	query, bt, ok := m.queryFor(filePath, "symbols")
	if !ok {
		return nil, nil
	}

	var out []Symbol
	for match := range allMatches(query, bt.Tree.RootNode(), bt.Source) {
		names := query.CaptureNames()
		var kind, nameText string
		var parentEndByte, nameByte uint
		found := false

		for _, cap := range match.Captures {
			capName := names[cap.Index]
			if !strings.HasPrefix(capName, "symbol.") {
				continue
			}
			suffix := strings.TrimPrefix(capName, "symbol.")
			if strings.HasSuffix(suffix, ".name") {
				nameText = cap.Node.Utf8Text(bt.Source)
				nameByte = cap.Node.StartByte()
				continue
			}
			if k, ok := captureKind[suffix]; ok {
				kind = k
				parentEndByte = cap.Node.EndByte()
				found = true
			}
		}

		if !found || nameText == "" {
			continue
		}

		selection := byteToPosition(bt.Source, nameByte)
		end := byteToPosition(bt.Source, parentEndByte)

		out = append(out, Symbol{
			Name:            nameText,
			Kind:            kind,
			File:            filePath,
			SelectionLine:   selection.Line,
			SelectionColumn: selection.Column,
			EndLine:         end.Line,
		})
	}
	return out, nil
}
