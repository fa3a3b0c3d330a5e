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
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Daemon holds the tunables spec.md §5 names as resource bounds plus the
// §9 Open Question flag ("keep it behind a config flag").
type Daemon struct {
	SocketName             string
	IdleTimeout            time.Duration
	PollTimeout            time.Duration
	DeferredQueueCapacity  int
	DeferredTTL            time.Duration
	FramerBufferBytes      int
	GrepOutputCapBytes     int
	PickerIndexCapPaths    int
	PickerResultCap        int
	NotifyOnDeferredEvict  bool
	RustupHome             string
	CargoHome              string
}

// Defaults returns the resource bounds spec.md §5 specifies.
func Defaults(name string) Daemon {
	return Daemon{
		SocketName:            name,
		IdleTimeout:           60 * time.Second,
		PollTimeout:           100 * time.Millisecond,
		DeferredQueueCapacity: 50,
		DeferredTTL:           10 * time.Second,
		FramerBufferBytes:     1 << 20,
		GrepOutputCapBytes:    256 << 10,
		PickerIndexCapPaths:   50_000,
		PickerResultCap:       50,
		NotifyOnDeferredEvict: true,
		RustupHome:            os.Getenv("RUSTUP_HOME"),
		CargoHome:             os.Getenv("CARGO_HOME"),
	}
}

// SocketPath resolves $XDG_RUNTIME_DIR/<name>.sock, falling back to
// /tmp/<name>-<user>.sock (spec.md §6).
func SocketPath(name string) string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, name+".sock")
	}
	return filepath.Join(os.TempDir(), name+"-"+currentUser()+".sock")
}

// LogPath resolves $XDG_RUNTIME_DIR/<name>.log with the same fallback.
func LogPath(name string) string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, name+".log")
	}
	return filepath.Join(os.TempDir(), name+"-"+currentUser()+".log")
}

// LanguagesConfigPath resolves $XDG_CONFIG_HOME/<name>/languages.json.
func LanguagesConfigPath(name string) string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, name, "languages.json")
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}
