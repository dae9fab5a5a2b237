package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mla/planning-backend/internal/adapter/postgres"
	"github.com/mla/planning-backend/internal/app"
	"github.com/mla/planning-backend/internal/domain"
	"github.com/mla/planning-backend/internal/metrics"
	authsvc "github.com/mla/planning-backend/internal/service/auth"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage operator accounts",
	}
	cmd.AddCommand(newUserCreateCmd(), newUserPromoteCmd())
	return cmd
}

// withAuthService connects to the database and runs fn with the auth service.
func withAuthService(cmd *cobra.Command, fn func(*authsvc.Service) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	pool, err := postgres.NewPool(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(app.NewServices(pool, cfg, logger, metrics.New()).Auth)
}

func newUserCreateCmd() *cobra.Command {
	var email, name, password, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an operator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAuthService(cmd, func(svc *authsvc.Service) error {
				u, err := svc.CreateUser(cmd.Context(), authsvc.CreateUserInput{
					Email:    email,
					Name:     name,
					Password: password,
					Role:     domain.UserRole(role),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with role %s\n", u.Email, u.ID, u.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Login email (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&password, "password", "", "Initial password, 8 to 72 characters (required)")
	cmd.Flags().StringVar(&role, "role", string(domain.UserRoleMember), "ADMIN, RESPONSABLE_MLA or MEMBRE_MLA")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserPromoteCmd() *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Change the role of an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAuthService(cmd, func(svc *authsvc.Service) error {
				u, err := svc.PromoteUser(cmd.Context(), authsvc.PromoteUserInput{
					Email: email,
					Role:  domain.UserRole(role),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s now has role %s\n", u.Email, u.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Login email (required)")
	cmd.Flags().StringVar(&role, "role", string(domain.UserRoleAdmin), "ADMIN, RESPONSABLE_MLA or MEMBRE_MLA")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
