package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/username/budget-planner/internal/salary"
)

// Config represents application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Salary   SalaryConfig   `mapstructure:"salary"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Log      LogConfig      `mapstructure:"log"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
}

// ServerConfig represents HTTP API configuration
type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	ReadTimeout    string   `mapstructure:"read_timeout"`
	WriteTimeout   string   `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig represents storage configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CalendarConfig represents working-day calendar configuration
type CalendarConfig struct {
	HolidaysFile string `mapstructure:"holidays_file"` // Optional, replaces the built-in holiday table
	HoursPerDay  int    `mapstructure:"hours_per_day"`
}

// SalaryConfig is the pay schedule used until one is saved through the API or CLI
type SalaryConfig struct {
	Type           string  `mapstructure:"type"`
	BaseAmount     float64 `mapstructure:"base_amount"`
	AdvanceDay     int     `mapstructure:"advance_day"`
	SalaryDay      int     `mapstructure:"salary_day"`
	AdvancePercent float64 `mapstructure:"advance_percent"` // 0 = split by working days
	WorkingHours   float64 `mapstructure:"working_hours"`   // 0 = 8 hours
}

// DaemonConfig represents daemon mode configuration
type DaemonConfig struct {
	Schedule    string `mapstructure:"schedule"`     // Cron spec in MSK, at most one fire per day, e.g. "0 9 * * *"
	MonthsAhead int    `mapstructure:"months_ahead"` // Months generated after the current one
	SystemTray  bool   `mapstructure:"system_tray"`  // Show system tray icon (Windows only)
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// AMQPConfig represents event publishing configuration. Empty URL disables publishing.
type AMQPConfig struct {
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("database.path", "./data/budget.db")

	v.SetDefault("calendar.holidays_file", "")
	v.SetDefault("calendar.hours_per_day", 8)

	v.SetDefault("salary.type", string(salary.PayTypeFixed))
	v.SetDefault("salary.base_amount", 50000)
	v.SetDefault("salary.advance_day", 25)
	v.SetDefault("salary.salary_day", 10)
	v.SetDefault("salary.advance_percent", 40)
	v.SetDefault("salary.working_hours", 8)

	v.SetDefault("daemon.schedule", "0 9 * * *")
	v.SetDefault("daemon.months_ahead", 1)
	v.SetDefault("daemon.system_tray", false)

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "budget")
	v.SetDefault("amqp.routing_key", "transactions.planned")
}

// Load loads configuration from file and BUDGET_* environment variables.
// With an empty configPath the standard locations are searched and a missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.budget-planner")
		v.AddConfigPath("/etc/budget-planner")
	}

	v.SetEnvPrefix("BUDGET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Calendar.HoursPerDay < 1 || c.Calendar.HoursPerDay > 24 {
		return fmt.Errorf("calendar.hours_per_day must be between 1 and 24")
	}

	if _, err := c.Salary.PayConfig(); err != nil {
		return fmt.Errorf("salary: %w", err)
	}

	if _, err := cron.ParseStandard(c.Daemon.Schedule); err != nil {
		return fmt.Errorf("daemon.schedule %q is not a valid cron spec: %w", c.Daemon.Schedule, err)
	}
	if c.Daemon.MonthsAhead < 0 || c.Daemon.MonthsAhead > 12 {
		return fmt.Errorf("daemon.months_ahead must be between 0 and 12")
	}

	if c.AMQP.URL != "" && (c.AMQP.Exchange == "" || c.AMQP.RoutingKey == "") {
		return fmt.Errorf("amqp.exchange and amqp.routing_key are required when amqp.url is set")
	}

	return nil
}

// PayConfig converts the configured defaults into a validated pay schedule
func (s SalaryConfig) PayConfig() (salary.PayConfig, error) {
	payType, err := salary.ParsePayType(s.Type)
	if err != nil {
		return salary.PayConfig{}, err
	}

	cfg := salary.PayConfig{
		Type:       payType,
		BaseAmount: decimal.NewFromFloat(s.BaseAmount),
		AdvanceDay: s.AdvanceDay,
		SalaryDay:  s.SalaryDay,
	}
	if s.AdvancePercent != 0 {
		p := decimal.NewFromFloat(s.AdvancePercent)
		cfg.AdvancePercent = &p
	}
	if s.WorkingHours != 0 {
		h := decimal.NewFromFloat(s.WorkingHours)
		cfg.WorkingHoursPerDay = &h
	}

	if err := cfg.Validate(); err != nil {
		return salary.PayConfig{}, err
	}
	return cfg, nil
}

// GetReadTimeout returns the HTTP read timeout
func (c *ServerConfig) GetReadTimeout() time.Duration {
	return parseDuration(c.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns the HTTP write timeout
func (c *ServerConfig) GetWriteTimeout() time.Duration {
	return parseDuration(c.WriteTimeout, 15*time.Second)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	duration, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return duration
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.AMQP.URL = os.ExpandEnv(c.AMQP.URL)
	c.Database.Path = os.ExpandEnv(c.Database.Path)
	c.Calendar.HolidaysFile = os.ExpandEnv(c.Calendar.HolidaysFile)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
