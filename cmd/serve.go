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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lspbroker.dev/lspbroker/internal/config"
	"lspbroker.dev/lspbroker/internal/daemon"
	"lspbroker.dev/lspbroker/internal/logging"
	"lspbroker.dev/lspbroker/internal/platform"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lspbroker daemon",
	Long: `Start the lspbroker daemon: bind its editor-facing Unix socket,
load the built-in and user language tables, and run the event loop until
idle timeout or a shutdown signal.

If a daemon is already listening on this socket name, serve detects it
and exits cleanly rather than stealing the socket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		socketName := viper.GetString("socketName")

		logFile, err := os.OpenFile(config.LogPath(socketName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer logFile.Close()
		logging.SetOutput(logFile)
		logging.SetDebugEnabled(viper.GetString("logLevel") == "debug")

		fs := platform.NewOSFileSystem()
		table := config.NewTable()

		languagesPath := viper.GetString("languagesConfig")
		if languagesPath == "" {
			languagesPath = config.LanguagesConfigPath(socketName)
		}
		overlay, err := config.LoadUserLanguages(fs, languagesPath)
		if err != nil {
			logging.Warning("loading %s: %v", languagesPath, err)
		} else if len(overlay) > 0 {
			table.SetOverlay(overlay)
		}

		if fw, err := platform.NewFSNotifyFileWatcher(); err != nil {
			logging.Warning("language config watcher unavailable: %v", err)
		} else if watcher, err := config.NewWatcher(table, fs, fw, languagesPath); err != nil {
			logging.Warning("language config watcher unavailable: %v", err)
			fw.Close()
		} else {
			defer watcher.Close()
		}

		cfg := config.Defaults(socketName)
		if idle := viper.GetDuration("idleTimeout"); idle > 0 {
			cfg.IdleTimeout = idle
		}

		d := daemon.New(cfg, table, fs, platform.NewRealTimeProvider())

		logging.Info("starting lspbroker on socket %q", config.SocketPath(socketName))
		pterm.Info.Printf("lspbroker listening on %s\n", config.SocketPath(socketName))

		err = d.Run(context.Background())
		if errors.Is(err, daemon.ErrAlreadyRunning) {
			pterm.Info.Println("a daemon is already running on this socket; exiting")
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
