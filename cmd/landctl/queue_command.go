package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"land-backend/internal/models"
	"land-backend/internal/repositories"
	"land-backend/internal/services"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	var view string
	var limit int

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Print the review queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := models.ParseQueueView(view)
			if err != nil {
				return err
			}
			cfg := ctx.ensureConfig()
			pool := ctx.ensurePool()
			svc := services.NewReviewQueueService(
				repositories.NewCustomerRepository(pool),
				repositories.NewPropertyRepository(pool),
				repositories.NewUserRepository(pool),
				cfg.Workflow.OverdueThresholdDays, cfg.Workflow.QueueLimit,
				ctx.logger(),
			)
			items, err := svc.View(cmd.Context(), v, limit)
			if err != nil {
				return fmt.Errorf("build queue: %w", err)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing awaiting review")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Ref", "Type", "Category", "Name", "Submitted by", "Days", "Overdue"},
				queueRows(items, svc.OverdueAfterDays),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&view, "view", "all", "Queue view: all, customers, properties or overdue")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records per entity type (0 uses the configured default)")
	return cmd
}

func queueRows(items []*models.ReviewQueueItem, threshold int) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		name := "(missing detail)"
		if it.DisplayName != nil {
			name = *it.DisplayName
		}
		overdue := ""
		if services.IsOverdue(it, threshold) {
			overdue = "yes"
		}
		rows = append(rows, []string{
			it.ReferenceID,
			it.EntityType.Label(),
			it.CategoryLabel,
			name,
			it.SubmittedByName,
			strconv.Itoa(it.DaysPending),
			overdue,
		})
	}
	return rows
}
