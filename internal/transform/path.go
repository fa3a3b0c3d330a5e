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

// Package transform turns raw LSP results into the editor's flat JSON
// shapes (spec.md §4.6 "Policies"): goto-definition's Location union, plus
// the scp:// path and file:// URI conversions it needs.
package transform

import "strings"

// ParsedFile is an editor-supplied `file` field split into its real
// filesystem path and, if present, the scp:// ssh host it was prefixed
// with (spec.md §6 "Path conventions").
type ParsedFile struct {
	Path    string
	SSHHost string // "" when the file carried no scp:// prefix
}

// ParseFile splits `scp://user@host//abs/path` into its host and path
// parts; a plain path is returned with an empty SSHHost.
func ParseFile(file string) ParsedFile {
	const prefix = "scp://"
	if !strings.HasPrefix(file, prefix) {
		return ParsedFile{Path: file}
	}
	rest := file[len(prefix):]
	idx := strings.Index(rest, "//")
	if idx < 0 {
		return ParsedFile{Path: file}
	}
	return ParsedFile{SSHHost: rest[:idx], Path: rest[idx+1:]}
}

// ReprefixPath restores the scp:// prefix for a path produced by an LSP
// result, if sshHost is non-empty (spec.md §8 invariant 9: "with
// ssh_host=\"u@h\", output {file:\"scp://u@h//a\",...}").
func ReprefixPath(path, sshHost string) string {
	if sshHost == "" {
		return path
	}
	return "scp://" + sshHost + "/" + path
}

// PathToFileURI builds a `file://` URI from an absolute filesystem path.
func PathToFileURI(path string) string {
	return "file://" + path
}

// FileURIToPath strips a `file://` prefix, returning uri unchanged if it
// doesn't have one.
func FileURIToPath(uri string) string {
	const prefix = "file://"
	if strings.HasPrefix(uri, prefix) {
		return uri[len(prefix):]
	}
	return uri
}
