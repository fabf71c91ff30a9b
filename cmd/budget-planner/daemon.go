package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/budget-planner/internal/daemon"
)

func daemonCmd() *cobra.Command {
	var schedule string
	var systemTray bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run scheduled salary generation in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if schedule == "" {
				schedule = a.cfg.Daemon.Schedule
			}
			if !cmd.Flags().Changed("tray") {
				systemTray = a.cfg.Daemon.SystemTray
			}

			d, err := daemon.New(a.manager, schedule, a.cfg.Daemon.MonthsAhead, systemTray, logger)
			if err != nil {
				return err
			}

			logger.Info("Starting daemon",
				zap.String("schedule", schedule),
				zap.Int("months_ahead", a.cfg.Daemon.MonthsAhead),
				zap.Bool("system_tray", systemTray))

			return d.Run()
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron spec overriding daemon.schedule")
	cmd.Flags().BoolVar(&systemTray, "tray", false, "Show system tray icon (Windows only)")

	return cmd
}
