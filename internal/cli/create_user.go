package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/storefront/internal/config"
	"github.com/jcmexdev/storefront/internal/storefront/app"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

type createUserOptions struct {
	email    string
	password string
	fullName string
	role     string
}

// newCreateUserCmd provisions staff accounts; the API only registers customers.
func newCreateUserCmd(root *rootOptions) *cobra.Command {
	opts := &createUserOptions{}
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an admin, employee or customer account",
		Example: `  storefront create-user --email ops@shop.test --password 's3cret-pass' --role ADMIN`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role := entity.Role(strings.ToUpper(strings.TrimSpace(opts.role)))
			switch role {
			case entity.RoleAdmin, entity.RoleEmployee, entity.RoleCustomer:
			default:
				return fmt.Errorf("unknown role %q", opts.role)
			}

			cfg, err := config.LoadConfig(root.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			st, err := openStorage(cmd.Context(), cfg.DB)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			u, err := app.NewUserService(st, nil).Create(cmd.Context(), opts.email, opts.password, opts.fullName, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %d <%s>\n", u.Role, u.ID, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "login email")
	cmd.Flags().StringVar(&opts.password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&opts.fullName, "name", "", "full name")
	cmd.Flags().StringVar(&opts.role, "role", string(entity.RoleEmployee), "ADMIN, EMPLOYEE or CUSTOMER")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
