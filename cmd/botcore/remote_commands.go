package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func addRemoteFlags(cmd *cobra.Command, flags *RemoteFlags) {
	cmd.Flags().StringVar(&flags.APIUrl, "api-url", "", "daemon URL (default http://localhost:8080/api)")
	cmd.Flags().DurationVar(&flags.APITimeout, "api-timeout", 10*time.Second, "request timeout")
}

// createSendCommand creates the send subcommand
func createSendCommand(remoteFlags *RemoteFlags, sendFlags *SendFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Run a message through the daemon's interception pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(remoteFlags)
			reply, ok, err := c.SendMessage(cmd.Context(), sendFlags.Message, sendFlags.UserID)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("no interception; message would proceed to normal handling")
				return nil
			}
			printJSON(reply)
			return nil
		},
	}
	cmd.Flags().StringVar(&sendFlags.Message, "message", "", "message text (required)")
	cmd.Flags().StringVar(&sendFlags.UserID, "user", "", "sender user id")
	addRemoteFlags(cmd, remoteFlags)
	if err := cmd.MarkFlagRequired("message"); err != nil {
		panic(err)
	}
	return cmd
}

// createHealthCommand creates the health subcommand
func createHealthCommand(remoteFlags *RemoteFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Print the health snapshot of all configured services",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(remoteFlags)
			snapshot, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			printJSON(snapshot)
			return nil
		},
	}
	addRemoteFlags(cmd, remoteFlags)
	return cmd
}

// createEventsCommand creates the events subcommand
func createEventsCommand(remoteFlags *RemoteFlags, eventsFlags *EventsFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Replay the audit trail, optionally from a point in time",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(remoteFlags)
			var since *time.Time
			if eventsFlags.Since != "" {
				t, err := time.Parse(time.RFC3339, eventsFlags.Since)
				if err != nil {
					return fmt.Errorf("invalid --since: %w", err)
				}
				since = &t
			}
			events, err := c.Events(cmd.Context(), since)
			if err != nil {
				return err
			}
			printJSON(events)
			return nil
		},
	}
	cmd.Flags().StringVar(&eventsFlags.Since, "since", "", "RFC3339 cutoff; only events at or after it")
	addRemoteFlags(cmd, remoteFlags)
	return cmd
}

// createStatsCommand creates the stats subcommand
func createStatsCommand(remoteFlags *RemoteFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the per-kind error counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(remoteFlags)
			stats, err := c.ErrorStats(cmd.Context())
			if err != nil {
				return err
			}
			printJSON(stats)
			return nil
		},
	}
	addRemoteFlags(cmd, remoteFlags)
	return cmd
}

// createResetStatsCommand creates the reset-stats subcommand
func createResetStatsCommand(remoteFlags *RemoteFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-stats",
		Short: "Zero the per-kind error counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(remoteFlags)
			if err := c.ResetErrorStats(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("error counters reset")
			return nil
		},
	}
	addRemoteFlags(cmd, remoteFlags)
	return cmd
}
