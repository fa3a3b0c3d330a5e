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
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lspbroker.dev/lspbroker/internal/config"
)

// statusCmd dials the running daemon's small admin socket (SPEC_FULL.md §4
// "structured daemon-internal metrics counters") and prints its raw JSON
// Stats snapshot. It never touches the editor-facing socket.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a running daemon's internal counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.SocketPath(viper.GetString("socketName")) + ".admin"

		conn, err := net.DialTimeout("unix", path, 500*time.Millisecond)
		if err != nil {
			return fmt.Errorf("no daemon admin socket at %s: %w", path, err)
		}
		defer conn.Close()

		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading status: %w", err)
		}
		fmt.Print(line)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
