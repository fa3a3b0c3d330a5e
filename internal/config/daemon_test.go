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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"lspbroker.dev/lspbroker/internal/config"
)

func TestSocketPath_PrefersXDGRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/lspbroker.sock", config.SocketPath("lspbroker"))
}

func TestSocketPath_FallsBackToTmp(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("USER", "alice")
	got := config.SocketPath("lspbroker")
	assert.Equal(t, filepath.Join(os.TempDir(), "lspbroker-alice.sock"), got)
}

func TestLanguagesConfigPath_UsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/home/alice/.config")
	got := config.LanguagesConfigPath("lspbroker")
	assert.Equal(t, "/home/alice/.config/lspbroker/languages.json", got)
}

func TestDefaults_MatchesResourceBounds(t *testing.T) {
	d := config.Defaults("lspbroker")
	assert.Equal(t, 50, d.DeferredQueueCapacity)
	assert.Equal(t, 1<<20, d.FramerBufferBytes)
	assert.Equal(t, 50_000, d.PickerIndexCapPaths)
	assert.True(t, d.NotifyOnDeferredEvict)
}
