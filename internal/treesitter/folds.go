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

// Fold is one foldable range, editor-facing shape for folding_range-style
// queries (spec.md §4.9 "query operations": "folds").
type Fold struct {
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Folds runs the "folds" query over path's stored tree. Every capture
// named "@fold" becomes one range spanning its node's start and end
// lines; single-line captures are dropped since they fold nothing.
func (m *Manager) Folds(filePath string) ([]Fold, error) {
	query, bt, ok := m.queryFor(filePath, "folds")
	if !ok {
		return nil, nil
	}

	var out []Fold
	for match := range allMatches(query, bt.Tree.RootNode(), bt.Source) {
		node, ok := captureNode(query, match, "fold")
		if !ok {
			continue
		}
		start := byteToPosition(bt.Source, node.StartByte())
		end := byteToPosition(bt.Source, node.EndByte())
		if end.Line <= start.Line {
			continue
		}
		out = append(out, Fold{StartLine: start.Line, EndLine: end.Line})
	}
	return out, nil
}
