package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/budget-planner/internal/budget"
	"github.com/username/budget-planner/internal/calendar"
	"github.com/username/budget-planner/internal/config"
	"github.com/username/budget-planner/internal/events"
	"github.com/username/budget-planner/internal/planner"
	"github.com/username/budget-planner/internal/storage/sqlite"
)

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "budget-planner",
		Short: "Personal budget planner",
		Long:  "Personal budget planner with salary forecasting on the Russian working-day calendar",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional
			_ = godotenv.Load()

			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(daemonCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type eventPublisher interface {
	planner.Publisher
	Close() error
}

// app holds the components shared by all commands
type app struct {
	cfg       *config.Config
	store     *sqlite.Store
	publisher eventPublisher
	manager   *planner.Manager
}

func (a *app) Close() {
	if err := a.publisher.Close(); err != nil {
		logger.Warn("Failed to close event publisher", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}
	logger.Sync()
}

// initializeApp loads config and wires storage, calendar, events and planner
func initializeApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	defaults, err := cfg.Salary.PayConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid salary defaults: %w", err)
	}

	cal, err := initializeCalendar(cfg)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.New(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var publisher eventPublisher = events.NopPublisher{}
	if cfg.AMQP.URL != "" {
		client, err := events.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey, logger)
		if err != nil {
			// Publishing is optional
			logger.Warn("Event publishing disabled", zap.Error(err))
		} else {
			publisher = client
		}
	}

	service := budget.NewService(store, logger)
	manager := planner.NewManager(service, cal, publisher, defaults, logger)

	return &app{
		cfg:       cfg,
		store:     store,
		publisher: publisher,
		manager:   manager,
	}, nil
}

func initializeCalendar(cfg *config.Config) (calendar.MonthCalendar, error) {
	if cfg.Calendar.HolidaysFile == "" {
		return calendar.NewWorkCalendar(calendar.FixedHolidays(), cfg.Calendar.HoursPerDay), nil
	}

	fc := calendar.NewFileCalendar(cfg.Calendar.HolidaysFile, cfg.Calendar.HoursPerDay, logger)
	if err := fc.Load(); err != nil {
		return nil, fmt.Errorf("failed to load holidays file: %w", err)
	}
	return fc, nil
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}

func getIcon(dryRun bool) string {
	if dryRun {
		return "📋"
	}
	return "✅"
}
