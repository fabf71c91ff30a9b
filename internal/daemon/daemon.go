package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/username/budget-planner/internal/budget"
	"github.com/username/budget-planner/internal/salary"
)

// ErrSyncRunning is returned when a generation run is already in progress
var ErrSyncRunning = errors.New("generation already in progress")

// mskLocation is the timezone the schedule is evaluated in
var mskLocation = time.FixedZone("MSK", 3*60*60)

// Generator materializes forecasted payments
type Generator interface {
	GenerateAhead(ctx context.Context, now time.Time, monthsAhead int, dryRun bool) (*budget.GenerateResult, error)
	NextPayment(ctx context.Context, now time.Time) (*salary.ForecastedPayment, error)
}

// Daemon periodically turns the salary forecast into planned transactions
type Daemon struct {
	generator   Generator
	spec        string
	schedule    cron.Schedule
	monthsAhead int
	systemTray  bool
	logger      *zap.Logger
	now         func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	trayApp *TrayApp

	mu          sync.Mutex // guards the fields below
	syncRunning bool
	lastRunDate string    // last successful scheduled run, MSK date
	lastRunTime time.Time // last successful run of any kind
	lastCreated int
}

// New creates a daemon running generation on the given cron spec
func New(generator Generator, spec string, monthsAhead int, systemTray bool, logger *zap.Logger) (*Daemon, error) {
	schedule, err := parseSchedule(spec)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		generator:   generator,
		spec:        spec,
		schedule:    schedule,
		monthsAhead: monthsAhead,
		systemTray:  systemTray,
		logger:      logger,
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// scheduleProbeFires is how many upcoming fires parseSchedule inspects
const scheduleProbeFires = 64

// parseSchedule parses a standard cron spec. Scheduled runs are limited to
// one per MSK day, so specs firing twice on the same day are rejected.
func parseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	t := time.Date(2024, time.January, 1, 0, 0, 0, 0, mskLocation)
	prev := ""
	for i := 0; i < scheduleProbeFires; i++ {
		t = schedule.Next(t)
		if t.IsZero() {
			break
		}
		day := t.Format("2006-01-02")
		if day == prev {
			return nil, fmt.Errorf("invalid schedule %q: fires more than once a day", spec)
		}
		prev = day
	}
	return schedule, nil
}

// Run starts the daemon and stops it on SIGINT or SIGTERM
func (d *Daemon) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return d.Start(ctx)
}

// Start runs the daemon until ctx is cancelled or Stop is called
func (d *Daemon) Start(ctx context.Context) error {
	go func() {
		select {
		case <-ctx.Done():
			d.logger.Info("Context done, shutting down daemon")
			d.Stop()
		case <-d.ctx.Done():
		}
	}()

	if d.systemTray {
		d.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(d, d.logger)
		if err != nil {
			d.logger.Warn("Failed to initialize system tray", zap.Error(err))
			d.runScheduledLogic()
			return nil
		}
		d.trayApp = trayApp
		// Blocks until Quit
		d.trayApp.Run()
		return nil
	}

	d.logger.Info("Running without system tray")
	d.runScheduledLogic()
	return nil
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// runScheduledLogic runs the cron scheduler until the daemon stops
func (d *Daemon) runScheduledLogic() {
	d.logger.Info("Daemon scheduled logic started",
		zap.String("schedule", d.spec),
		zap.Int("months_ahead", d.monthsAhead),
		zap.String("timezone", "MSK (UTC+3)"))

	c := cron.New(
		cron.WithLocation(mskLocation),
		cron.WithLogger(cronLogger{d.logger.Sugar()}),
	)
	c.Schedule(d.schedule, cron.FuncJob(d.runScheduled))

	// Catch up on start without consuming today's scheduled run
	if _, err := d.runSync(); err != nil {
		d.logger.Error("Catch-up generation failed", zap.Error(err))
	}

	c.Start()
	d.logger.Info("Next generation scheduled", zap.Time("next_run", d.NextRun()))

	<-d.ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	if d.trayApp != nil {
		d.trayApp.Stop()
	}
	d.logger.Info("Daemon stopped")
}

// runScheduled is the cron job; it runs at most once per MSK day
func (d *Daemon) runScheduled() {
	today := d.now().In(mskLocation).Format("2006-01-02")

	d.mu.Lock()
	done := d.lastRunDate == today
	d.mu.Unlock()
	if done {
		d.logger.Debug("Already generated today, skipping", zap.String("date", today))
		return
	}

	res, err := d.runSync()
	if err != nil {
		d.logger.Error("Scheduled generation failed", zap.Error(err))
		d.notify("Generation Failed", fmt.Sprintf("Error: %v", err))
		return
	}

	d.mu.Lock()
	d.lastRunDate = today
	d.mu.Unlock()

	if len(res.Created) > 0 {
		d.notify("Payments Planned", fmt.Sprintf("%d new planned payments", len(res.Created)))
	}
	d.logger.Info("Next generation scheduled", zap.Time("next_run", d.NextRun()))
}

// runSync generates planned payments for the current and following months.
// Concurrent calls return ErrSyncRunning instead of racing on inserts.
func (d *Daemon) runSync() (*budget.GenerateResult, error) {
	d.mu.Lock()
	if d.syncRunning {
		d.mu.Unlock()
		d.logger.Warn("Generation already running, skipping concurrent execution")
		return nil, ErrSyncRunning
	}
	d.syncRunning = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.syncRunning = false
		d.mu.Unlock()
	}()

	now := d.now()
	d.logger.Info("Running generation", zap.Time("now", now))

	res, err := d.generator.GenerateAhead(d.ctx, now, d.monthsAhead, false)
	if err != nil {
		return nil, fmt.Errorf("failed to generate payments: %w", err)
	}

	d.mu.Lock()
	d.lastRunTime = now
	d.lastCreated = len(res.Created)
	d.mu.Unlock()

	d.logger.Info("Generation completed",
		zap.Int("created", len(res.Created)),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

// SyncNow triggers an immediate generation (called from tray menu)
func (d *Daemon) SyncNow() {
	d.logger.Info("Manual generation triggered")
	res, err := d.runSync()
	if err != nil {
		d.logger.Error("Manual generation failed", zap.Error(err))
		d.notify("Generation Failed", fmt.Sprintf("Error: %v", err))
		return
	}
	d.notify("Generation Completed", fmt.Sprintf("%d created, %d already planned", len(res.Created), len(res.Skipped)))
}

// NextRun returns the next scheduled generation time
func (d *Daemon) NextRun() time.Time {
	return d.schedule.Next(d.now().In(mskLocation))
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() map[string]interface{} {
	d.mu.Lock()
	status := map[string]interface{}{
		"running":       d.ctx.Err() == nil,
		"schedule":      d.spec,
		"months_ahead":  d.monthsAhead,
		"last_run_date": d.lastRunDate,
		"last_created":  d.lastCreated,
	}
	if !d.lastRunTime.IsZero() {
		status["last_run_time"] = d.lastRunTime.Format(time.RFC3339)
	}
	d.mu.Unlock()

	status["next_run"] = d.NextRun().Format(time.RFC3339)

	p, err := d.generator.NextPayment(d.ctx, d.now())
	if err != nil {
		d.logger.Debug("No next payment", zap.Error(err))
		return status
	}
	status["next_payment"] = map[string]interface{}{
		"date":   p.Date.Format("2006-01-02"),
		"amount": p.Amount,
		"kind":   string(p.Kind),
	}
	return status
}

func (d *Daemon) notify(title, message string) {
	if d.trayApp != nil {
		d.trayApp.ShowNotification(title, message)
	}
}

// cronLogger routes cron's own logging through zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
