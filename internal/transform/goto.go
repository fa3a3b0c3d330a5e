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
package transform

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// GotoResult is the editor's flat `{file, line, column}` shape (spec.md
// §8 invariant 9 "Goto transformation").
type GotoResult struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// GotoLocation transforms a raw LSP goto-* result — `Location | Location[]
// | LocationLink[] | null` — into the editor's flat shape, picking the
// first element of an array and preferring targetUri/targetSelectionRange
// over uri/range when both are present (spec.md §4.6 "goto_* transformation").
// It returns (nil, nil) for a `null`/empty-array result (spec.md invariant
// 9: "[] or null returns null").
func GotoLocation(raw json.RawMessage, sshHost string) (*GotoResult, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	parsed := gjson.ParseBytes(raw)
	item := parsed
	if parsed.IsArray() {
		elems := parsed.Array()
		if len(elems) == 0 {
			return nil, nil
		}
		item = elems[0]
	}

	uri := item.Get("targetUri")
	rangeStart := item.Get("targetSelectionRange.start")
	if !uri.Exists() {
		uri = item.Get("uri")
		rangeStart = item.Get("range.start")
	}
	if !uri.Exists() || !rangeStart.Exists() {
		return nil, nil
	}

	path := FileURIToPath(uri.String())
	path = ReprefixPath(path, sshHost)

	return &GotoResult{
		File:   path,
		Line:   int(rangeStart.Get("line").Int()),
		Column: int(rangeStart.Get("character").Int()),
	}, nil
}
