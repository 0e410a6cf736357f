package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/storefront/internal/config"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(root.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			st, err := openStorage(cmd.Context(), cfg.DB)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date (%s)\n", cfg.DB.Driver)
			return nil
		},
	}
}
