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
package lspclient

import "lspbroker.dev/lspbroker/internal/lsptypes"

// initializeParams builds the fixed `initialize` payload spec.md §4.3
// mandates: a conservative, fixed client-capabilities object, independent
// of which language server is on the other end.
func initializeParams(workspaceURI *string, processID int) lsptypes.InitializeParams {
	pid := processID
	return lsptypes.InitializeParams{
		ProcessID:    &pid,
		RootURI:      workspaceURI,
		Capabilities: lsptypes.DefaultClientCapabilities(),
	}
}
