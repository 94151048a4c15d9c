// Command hangout serves the Hangout Buddies API and ships maintenance
// subcommands for seeding and inspecting a store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/hangout/internal/config"
	"github.com/okian/hangout/pkg/logger"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "hangout",
		Short:         "Hangout Buddies - event discovery and interest matching",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configFile != "" {
				if err := os.Setenv(config.EnvConfigFile, configFile); err != nil {
					return err
				}
			}
			return logger.Init()
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (overrides "+config.EnvConfigFile+")")

	root.AddCommand(serveCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(recommendCmd())
	root.AddCommand(smokeCmd())
	return root
}
