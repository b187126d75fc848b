// Package main provides the entry point for the chromalens CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chromalens/chromalens-go/internal/version"
)

var globalFlags = struct {
	configPath string
	host       string
	port       int
	tls        bool
	insecure   bool
	apiKey     string
	timeoutSec int
	tenant     string
	database   string
	verbose    bool
	jsonOut    bool
}{}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "chromalens",
		Short:   "Inspect and manage Chroma vector database servers",
		Version: fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date),
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globalFlags.configPath, "config", "", "Path to the config file")
	pf.StringVar(&globalFlags.host, "host", "", "Chroma server host")
	pf.IntVar(&globalFlags.port, "port", 0, "Chroma server port")
	pf.BoolVar(&globalFlags.tls, "tls", false, "Use https")
	pf.BoolVar(&globalFlags.insecure, "insecure-skip-verify", false, "Skip TLS certificate verification")
	pf.StringVar(&globalFlags.apiKey, "api-key", "", "Bearer token for authenticated servers")
	pf.IntVar(&globalFlags.timeoutSec, "timeout", 0, "Request timeout in seconds")
	pf.StringVarP(&globalFlags.tenant, "tenant", "t", "", "Tenant to operate on")
	pf.StringVarP(&globalFlags.database, "database", "d", "", "Database to operate on")
	pf.BoolVarP(&globalFlags.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&globalFlags.jsonOut, "json", false, "Emit JSON instead of tables")

	rootCmd.AddCommand(
		newHeartbeatCmd(),
		newVersionCmd(),
		newResetCmd(),
		newTenantCmd(),
		newDatabaseCmd(),
		newCollectionCmd(),
		newItemsCmd(),
		newQueryCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
