package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/username/budget-planner/internal/calendar"
	"github.com/username/budget-planner/internal/config"
)

func TestInitializeCalendar(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := logger
	logger = zap.New(core)
	t.Cleanup(func() { logger = prev })

	path := filepath.Join(t.TempDir(), "holidays.txt")
	if err := os.WriteFile(path, []byte("01-01 Новый год\n05-09 День Победы\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cfg := &config.Config{}
	cfg.Calendar.HolidaysFile = path
	cfg.Calendar.HoursPerDay = 8

	cal, err := initializeCalendar(cfg)
	if err != nil {
		t.Fatalf("initializeCalendar() error = %v", err)
	}
	if cal.IsWorkingDay(calendar.Date(2024, 5, 9)) {
		t.Error("2024-05-09 should be a holiday from the file")
	}
	if n := logs.FilterMessage("Holiday table loaded").Len(); n != 1 {
		t.Errorf("holiday table load logged %d times, want 1", n)
	}

	cfg.Calendar.HolidaysFile = filepath.Join(t.TempDir(), "missing.txt")
	if _, err := initializeCalendar(cfg); err == nil {
		t.Error("initializeCalendar() with a missing file should fail")
	}
}
