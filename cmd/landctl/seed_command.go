package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"land-backend/internal/auth"
	"land-backend/internal/models"
	"land-backend/internal/repositories"
)

func newSeedAdminCommand(ctx *commandContext) *cobra.Command {
	var email, name, password string
	var force bool

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the first administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			if email == "" || len(password) < 8 {
				return errors.New("--email and a --password of at least 8 characters are required")
			}

			users := repositories.NewUserRepository(ctx.ensurePool())
			n, err := users.CountAdministrators(cmd.Context())
			if err != nil {
				return fmt.Errorf("count administrators: %w", err)
			}
			if n > 0 && !force {
				fmt.Fprintf(cmd.OutOrStdout(), "%d administrator(s) already exist, nothing to do (use --force to add another)\n", n)
				return nil
			}
			if _, err := users.GetByEmail(cmd.Context(), email); err == nil {
				return fmt.Errorf("a user with email %s already exists", email)
			} else if !errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("look up %s: %w", email, err)
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			u := &models.User{
				Name:         name,
				Email:        email,
				PasswordHash: hash,
				Role:         models.RoleAdministrator,
				IsActive:     true,
			}
			if err := users.Create(cmd.Context(), u); err != nil {
				return fmt.Errorf("create administrator: %w", err)
			}
			ctx.logger().WithField("user_id", u.ID).Info("administrator created")
			fmt.Fprintf(cmd.OutOrStdout(), "Created administrator %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Administrator email")
	cmd.Flags().StringVar(&name, "name", "Administrator", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	cmd.Flags().BoolVar(&force, "force", false, "Create even if an administrator exists")
	return cmd
}
