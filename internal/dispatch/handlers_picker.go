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

// handlePickerInit implements `picker_init(cwd, recent_files?)` (spec.md
// §4.10): direct result, no LSP round trip involved.
func handlePickerInit(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
	d.Picker.Init(p.Cwd, p.Recent)
	return Data(map[string]string{"status": "ok"})
}

// handlePickerFileQuery implements `picker_file_query(query)`.
func handlePickerFileQuery(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
	return Data(d.Picker.FileQuery(p.Query))
}

// handlePickerGrepQuery implements `picker_grep_query(query)`: a
// synchronous `rg --vimgrep` subprocess (spec.md §4.10).
func handlePickerGrepQuery(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
	matches, err := d.Picker.GrepQuery(p.Query)
	if err != nil {
		logging.Debug("picker_grep_query failed: %v", err)
		return Data([]any{})
	}
	return Data(matches)
}

// handlePickerClose implements `picker_close`.
func handlePickerClose(d *Deps, clientID clients.ID, editorID int64, p Params) Result {
	d.Picker.Close()
	return Data(map[string]string{"status": "ok"})
}
