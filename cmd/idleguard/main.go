// Command idleguard runs shell commands under an idle-output watchdog,
// as a workflow action step, on the command line, or as an MCP server.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/deixis/idleguard"
	"github.com/deixis/idleguard/internal/logging"
	"github.com/deixis/idleguard/internal/shell"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errReported is returned once the failure has already been surfaced
// through the workflow commands.
var errReported = errors.New("run failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			log.Error().Err(err).Msg("idleguard")
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           "idleguard",
		Short:         "Run shell commands and kill them when they stop producing output",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(debug)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging (also enabled by "+logging.DebugEnv+"=1)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newMCPCmd())
	root.AddCommand(newShellsCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newShellsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shells",
		Short: "List the supported shells and their arguments",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range shell.Profiles() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-11s %s <command>\n", p.Name, strings.Join(p.Args, " "))
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), idleguard.Version)
		},
	}
}
