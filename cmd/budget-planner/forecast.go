package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/username/budget-planner/internal/budget"
	"github.com/username/budget-planner/internal/calendar"
	"github.com/username/budget-planner/internal/salary"
	"github.com/username/budget-planner/pkg/dateutil"
)

// monthFlags selects a starting month, defaulting to the current one
type monthFlags struct {
	month  string
	months int
}

func (f *monthFlags) register(cmd *cobra.Command, defaultMonths int) {
	cmd.Flags().StringVarP(&f.month, "month", "m", "", "Start month YYYY-MM (default: current month)")
	cmd.Flags().IntVarP(&f.months, "months", "n", defaultMonths, "Number of months")
}

func (f *monthFlags) start() (int, time.Month, error) {
	if f.months < 1 || f.months > 24 {
		return 0, 0, fmt.Errorf("months must be between 1 and 24, got %d", f.months)
	}
	if f.month == "" {
		today := dateutil.Today()
		return today.Year(), today.Month(), nil
	}
	t, err := dateutil.ParseMonth(f.month)
	if err != nil {
		return 0, 0, err
	}
	return t.Year(), t.Month(), nil
}

func calendarCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show working days, weekends and holidays of a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			date := dateutil.Today()
			if month != "" {
				if date, err = dateutil.ParseMonth(month); err != nil {
					return err
				}
			}

			info := a.manager.Calendar().MonthInfo(date.Year(), date.Month())
			printMonthInfo(cmd.OutOrStdout(), info)
			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "Month YYYY-MM (default: current month)")

	return cmd
}

func printMonthInfo(out io.Writer, info *calendar.MonthInfo) {
	fmt.Fprintf(out, "\n📅 %s %d\n", info.Month, info.Year)
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════")
	fmt.Fprintf(out, "  Working days:   %d (%dh)\n", info.WorkDays, info.WorkingHours)
	fmt.Fprintf(out, "  Weekends:       %d\n", info.Weekends)
	fmt.Fprintf(out, "  Holidays:       %d\n", info.Holidays)
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  DATE\tDAY\tTYPE\tNOTE")
	for _, d := range info.Days {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			d.Date.Format("2006-01-02"),
			d.Date.Weekday().String()[:3],
			d.Type,
			d.Note)
	}
	w.Flush()
}

func forecastCmd() *cobra.Command {
	var flags monthFlags
	var output string

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast advance and salary payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := flags.start()
			if err != nil {
				return err
			}

			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			forecasts, err := a.manager.Forecast(cmd.Context(), year, month, flags.months)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(output) {
			case "table", "":
				printForecasts(out, forecasts)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(forecasts)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(forecasts)
			default:
				return fmt.Errorf("unknown output format %q (table, json, yaml)", output)
			}
			return nil
		},
	}

	flags.register(cmd, 2)
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json or yaml")

	return cmd
}

func printForecasts(out io.Writer, forecasts []*salary.Forecast) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "MONTH\tWORKDAYS\t1-15\tADVANCE\t\tSALARY\t\t")
	var total int64
	for _, f := range forecasts {
		adv, sal := f.Advance(), f.Salary()
		total += adv.Amount + sal.Amount
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\t%s\t\n",
			dateutil.MonthKey(calendar.Date(f.Year, f.Month, 1)),
			f.TotalWorkingDays,
			f.FirstHalfWorkingDays,
			adv.Date.Format("02.01"),
			humanize.Comma(adv.Amount),
			sal.Date.Format("02.01"),
			humanize.Comma(sal.Amount))
	}
	w.Flush()
	fmt.Fprintf(out, "\n💰 Total: %s ₽\n", humanize.Comma(total))

	for _, f := range forecasts {
		for _, warn := range f.Warnings {
			fmt.Fprintf(out, "⚠️  %d-%02d: %v\n", f.Year, int(f.Month), warn)
		}
	}
}

func generateCmd() *cobra.Command {
	var flags monthFlags
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Store forecasted payments as planned income",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("months") {
				flags.months = a.cfg.Daemon.MonthsAhead + 1
			}
			year, month, err := flags.start()
			if err != nil {
				return err
			}

			result, err := a.manager.Generate(cmd.Context(), year, month, flags.months, dryRun)
			if err != nil {
				return err
			}

			logger.Info("Generation finished",
				zap.Int("created", len(result.Created)),
				zap.Int("skipped", len(result.Skipped)),
				zap.Bool("dry_run", dryRun))

			printGenerateResult(cmd.OutOrStdout(), result, dryRun)
			return nil
		},
	}

	flags.register(cmd, 2)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be created without saving")

	return cmd
}

func printGenerateResult(out io.Writer, result *budget.GenerateResult, dryRun bool) {
	icon := getIcon(dryRun)
	for _, t := range result.Created {
		fmt.Fprintf(out, "%s %s  %-8s %10s ₽\n", icon, t.Date.Format("2006-01-02"), t.Description, humanize.Comma(t.Amount.IntPart()))
	}
	for _, t := range result.Skipped {
		fmt.Fprintf(out, "⏭️  %s  %-8s %10s ₽ (already planned)\n", t.Date.Format("2006-01-02"), t.Description, humanize.Comma(t.Amount.IntPart()))
	}

	verb := "Created"
	if dryRun {
		verb = "Would create"
	}
	fmt.Fprintf(out, "\n%s %d, skipped %d\n", verb, len(result.Created), len(result.Skipped))
}
