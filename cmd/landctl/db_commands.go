package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"land-backend/internal/database"
	"land-backend/migrations"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := database.NewMigratorWithFS(ctx.ensurePool(), migrations.FS, ".")
			if err := m.RunMigrations(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations up to date")
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which migrations have been applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := database.NewMigratorWithFS(ctx.ensurePool(), migrations.FS, ".")
			applied, files, err := m.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Migration", "Applied"},
				migrationRows(files, applied),
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func migrationRows(files []string, applied map[string]bool) [][]string {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		state := "pending"
		if applied[f] {
			state = "yes"
		}
		rows = append(rows, []string{f, state})
	}
	return rows
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop all workflow data and re-run migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("reset deletes every customer, property and user; pass --confirm to proceed")
			}
			m := database.NewMigratorWithFS(ctx.ensurePool(), migrations.FS, ".")
			if err := m.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			if err := m.RunMigrations(cmd.Context()); err != nil {
				return fmt.Errorf("migrate after reset: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm destructive reset")
	return cmd
}
