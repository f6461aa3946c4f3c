package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot creates the root command with all subcommands attached.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	remoteFlags := &RemoteFlags{}
	sendFlags := &SendFlags{}
	eventsFlags := &EventsFlags{}
	templateFlags := &TemplateFlags{}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createServeCommand(globalFlags),
		createSendCommand(remoteFlags, sendFlags),
		createHealthCommand(remoteFlags),
		createEventsCommand(remoteFlags, eventsFlags),
		createStatsCommand(remoteFlags),
		createResetStatsCommand(remoteFlags),
		createTemplateCommand(templateFlags),
	)
	return root
}

// createRootCommand creates the root command with minimal persistent flags
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "botcore",
		Short: "Operational backbone for a conversational assistant",
		Long: `Botcore runs the assistant's operational core: the message
interception pipeline, the append-only event trail, concurrent health
probes of dependent services, and centralized error classification.

Examples:
  botcore serve --config=botcore.toml         # Start daemon
  botcore send --message="oi" --user=u1       # Run a message through the pipeline
  botcore health                              # Health snapshot of all services
  botcore events --since=2026-01-01T00:00:00Z # Replay the audit trail`,
	}

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")

	return root
}
