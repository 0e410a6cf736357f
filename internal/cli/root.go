// Package cli holds the storefront command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

// NewRootCmd builds a fresh command tree; tests get isolated flag state.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront checkout API",
		Long: `Storefront serves the shop's REST API: carts, coupons, shipping quotes,
checkout and order fulfilment, backed by SQLite or PostgreSQL.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: ./deploy/config.yaml or ./config.yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newCreateUserCmd(opts),
		newEventsCmd(opts),
	)
	return cmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
