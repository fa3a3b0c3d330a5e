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
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lspbroker",
	Short: "Multiplex editor connections onto language servers",
	Long: `lspbroker is a long-lived daemon that multiplexes multiple editor
instances onto multiple Language Server Protocol servers, translating
between a simple editor-facing RPC and the LSP wire protocol.

It also owns a per-buffer tree-sitter syntax state, used for symbol,
fold, and highlight queries independent of any LSP server, and a fuzzy
file/grep picker over the workspace.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("socket-name", "lspbroker", "Name used to derive the daemon's Unix socket and log file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warning, error")
	rootCmd.PersistentFlags().String("config", "", "Path to languages.json (default $XDG_CONFIG_HOME/lspbroker/languages.json)")
	rootCmd.PersistentFlags().Duration("idle-timeout", 0, "Exit after this long with no connected editors (0 keeps the daemon default)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging output")

	viper.BindPFlag("socketName", rootCmd.PersistentFlags().Lookup("socket-name"))
	viper.BindPFlag("logLevel", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("languagesConfig", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("idleTimeout", rootCmd.PersistentFlags().Lookup("idle-timeout"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.AutomaticEnv()

	if viper.GetBool("verbose") {
		pterm.EnableDebugMessages()
	}
}
