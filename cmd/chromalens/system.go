package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHeartbeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heartbeat",
		Short: "Check server liveness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			start := time.Now()
			ns, err := d.client.Heartbeat(cmd.Context())
			if err != nil {
				return fmt.Errorf("heartbeat: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(map[string]any{"nanosecond_heartbeat": ns, "round_trip": time.Since(start).String()})
			}
			fmt.Printf("server is up (heartbeat %d, round trip %s)\n", ns, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server-version",
		Short: "Print the server version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			v, err := d.client.Version(cmd.Context())
			if err != nil {
				return fmt.Errorf("server version: %w", err)
			}
			if globalFlags.jsonOut {
				return printJSON(map[string]string{"version": v})
			}
			fmt.Println(v)
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe ALL server state (destructive)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return fmt.Errorf("reset deletes every tenant, database and collection; re-run with --confirm")
			}
			d, err := buildDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			ok, err := d.client.Reset(cmd.Context())
			if err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			if !ok {
				return fmt.Errorf("server refused the reset (is ALLOW_RESET enabled?)")
			}
			fmt.Println("server state wiped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "Really wipe all server state")
	return cmd
}
