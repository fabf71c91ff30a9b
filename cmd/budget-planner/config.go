package main

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/username/budget-planner/internal/budget"
	"github.com/username/budget-planner/internal/salary"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the stored pay schedule",
	}

	cmd.AddCommand(showPayCmd())
	cmd.AddCommand(savePayCmd())

	return cmd
}

func showPayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active pay schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			source := "database"
			if _, err := a.manager.Service().PayConfig(cmd.Context()); errors.Is(err, budget.ErrNoPayConfig) {
				source = "config file defaults"
			} else if err != nil {
				return err
			}

			cfg, err := a.manager.PayConfig(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# source: %s\n", source)
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}

func savePayCmd() *cobra.Command {
	var (
		payType    string
		base       string
		advanceDay int
		salaryDay  int
		percent    string
		hours      string
	)

	cmd := &cobra.Command{
		Use:   "save-pay",
		Short: "Save the pay schedule used for forecasts",
		Example: `  budget-planner config save-pay --type FIXED --base 50000 --advance-day 25 --salary-day 10 --percent 40
  budget-planner config save-pay --type HOURLY --base 500 --advance-day 25 --salary-day 10 --hours 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := salary.ParsePayType(payType)
			if err != nil {
				return err
			}
			baseAmount, err := decimal.NewFromString(base)
			if err != nil {
				return fmt.Errorf("invalid --base %q: %w", base, err)
			}

			cfg := salary.PayConfig{
				Type:       t,
				BaseAmount: baseAmount,
				AdvanceDay: advanceDay,
				SalaryDay:  salaryDay,
			}
			if cfg.AdvancePercent, err = optionalDecimal("percent", percent); err != nil {
				return err
			}
			if cfg.WorkingHoursPerDay, err = optionalDecimal("hours", hours); err != nil {
				return err
			}

			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			saved, err := a.manager.Service().SavePayConfig(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Saved %s pay schedule: %s, advance on day %d, salary on day %d\n",
				saved.Type, saved.BaseAmount.String(), saved.AdvanceDay, saved.SalaryDay)
			return nil
		},
	}

	cmd.Flags().StringVar(&payType, "type", "FIXED", "Pay type: FIXED or HOURLY")
	cmd.Flags().StringVar(&base, "base", "", "Monthly salary (FIXED) or hourly rate (HOURLY)")
	cmd.Flags().IntVar(&advanceDay, "advance-day", 25, "Day of month the advance is paid")
	cmd.Flags().IntVar(&salaryDay, "salary-day", 10, "Day of the following month the salary is paid")
	cmd.Flags().StringVar(&percent, "percent", "", "Fixed advance percent (empty: split by working days)")
	cmd.Flags().StringVar(&hours, "hours", "", "Working hours per day for HOURLY (empty: 8)")
	cmd.MarkFlagRequired("base")

	return cmd
}

func optionalDecimal(name, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", name, s, err)
	}
	return &d, nil
}
