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
package dispatch

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Params is the editor's flat request shape (spec.md §4.6: "all inputs in
// the editor's flat shape {file, line, column, …}"), parsed loosely since
// each method only cares about a subset of these fields.
type Params struct {
	File      string
	Line      int
	Column    int
	EndLine   int
	NewName   string
	Text      string
	Version   int
	Command   string
	Arguments json.RawMessage
	Query     string
	Cwd       string
	Recent    []string
}

// ParseParams reads the fields any handler might need out of raw. Missing
// fields are left at their zero value; callers validate what they require
// (spec.md §4.6 preamble: "validates params.file").
func ParseParams(raw json.RawMessage) Params {
	p := gjson.ParseBytes(raw)
	var recent []string
	for _, r := range p.Get("recent").Array() {
		recent = append(recent, r.String())
	}
	return Params{
		File:      p.Get("file").String(),
		Line:      int(p.Get("line").Int()),
		Column:    int(p.Get("column").Int()),
		EndLine:   int(p.Get("end_line").Int()),
		NewName:   p.Get("new_name").String(),
		Text:      p.Get("text").String(),
		Version:   int(p.Get("version").Int()),
		Command:   p.Get("command").String(),
		Arguments: rawOf(p.Get("arguments")),
		Query:     p.Get("query").String(),
		Cwd:       p.Get("cwd").String(),
		Recent:    recent,
	}
}

func rawOf(r gjson.Result) json.RawMessage {
	if !r.Exists() {
		return nil
	}
	return json.RawMessage(r.Raw)
}
