package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/flatwise/internal/calculator"
	"github.com/mmynk/flatwise/internal/models"
)

var timeNow = time.Now

func valueCmd() *cobra.Command {
	var (
		initial   float64
		rate      float64
		purchased string
		on        string
		minValue  float64
		minPct    float64
		users     int
	)

	cmd := &cobra.Command{
		Use:   "value",
		Short: "Compute the depreciated value of an item",
		Example: `  flatwise value --initial 1000 --rate 0.2 --purchased 2025-01-01 --on 2026-01-01
  flatwise value --initial 1000 --rate 0.5 --purchased 2020-01-01 --min-pct 0.1 --users 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			purchaseDate, err := models.ParseDate(purchased)
			if err != nil {
				return fmt.Errorf("--purchased: %w", err)
			}
			asOf := models.Day(timeNow())
			if on != "" {
				if asOf, err = models.ParseDate(on); err != nil {
					return fmt.Errorf("--on: %w", err)
				}
			}

			item := &models.Item{
				Name:               "cli",
				InitialValue:       initial,
				PurchaseDate:       purchaseDate,
				YearlyDepreciation: rate,
			}
			if cmd.Flags().Changed("min") {
				item.MinimumValue = &minValue
			}
			if cmd.Flags().Changed("min-pct") {
				item.MinimumValuePct = &minPct
			}
			if err := item.Validate(); err != nil {
				return err
			}

			value, err := calculator.Depreciate(item, asOf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "value on %s: %.2f\n", models.FormatDate(asOf), value)
			if users > 0 {
				fmt.Fprintf(out, "share of %d users: %.2f\n", users, value/float64(users))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&initial, "initial", 0, "purchase price")
	cmd.Flags().Float64Var(&rate, "rate", 0, "yearly depreciation rate in [0,1)")
	cmd.Flags().StringVar(&purchased, "purchased", "", "purchase date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&on, "on", "", "valuation date (default: today)")
	cmd.Flags().Float64Var(&minValue, "min", 0, "absolute value floor")
	cmd.Flags().Float64Var(&minPct, "min-pct", 0, "value floor as a fraction of the price")
	cmd.Flags().IntVar(&users, "users", 0, "also print the per-user share")
	_ = cmd.MarkFlagRequired("initial")
	_ = cmd.MarkFlagRequired("purchased")
	return cmd
}
