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
	"lspbroker.dev/lspbroker/internal/clients"
	"lspbroker.dev/lspbroker/internal/logging"
)

// bufferQueryFunc is one of Manager.Symbols/Folds/Highlights/TextObjects.
type bufferQueryFunc func(d *Deps, path string) (any, error)

// handleBufferQuery builds a handler around one of the four tree-sitter
// query operations (spec.md §4.9). These never touch the LSP correlator —
// they answer directly from the buffer's stored parse tree.
func handleBufferQuery(query bufferQueryFunc) handlerFunc {
	return func(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
		if p.File == "" {
			return Empty()
		}
		result, err := query(d, p.File)
		if err != nil {
			logging.Debug("buffer query on %s failed: %v", p.File, err)
			return Empty()
		}
		return Data(result)
	}
}

func symbolsQuery(d *Deps, path string) (any, error)     { return d.Treesitter.Symbols(path) }
func foldsQuery(d *Deps, path string) (any, error)       { return d.Treesitter.Folds(path) }
func highlightsQuery(d *Deps, path string) (any, error)  { return d.Treesitter.Highlights(path) }
func textobjectsQuery(d *Deps, path string) (any, error) { return d.Treesitter.TextObjects(path) }
