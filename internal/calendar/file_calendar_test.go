package calendar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestFileCalendar_Load(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	path := filepath.Join(t.TempDir(), "holidays.txt")
	content := `# custom table
01-01 Новый год
12-31 Канун

not-a-date broken line
03-08
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	fc := NewFileCalendar(path, 8, logger)
	if err := fc.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	holidays := fc.Calendar().Holidays()
	if len(holidays) != 3 {
		t.Fatalf("len(Holidays) = %d, want 3", len(holidays))
	}
	if holidays[0].Name != "Новый год" {
		t.Errorf("first holiday name = %q, want %q", holidays[0].Name, "Новый год")
	}

	// 2024-12-31 is a Tuesday
	if fc.IsWorkingDay(Date(2024, time.December, 31)) {
		t.Errorf("IsWorkingDay(2024-12-31) = true, want false")
	}
	// Jan 2 is no longer a holiday
	if !fc.IsWorkingDay(Date(2024, time.January, 2)) {
		t.Errorf("IsWorkingDay(2024-01-02) = false, want true")
	}
}

func TestFileCalendar_BeforeLoadUsesBuiltInTable(t *testing.T) {
	fc := NewFileCalendar("does-not-exist.txt", 8, nil)

	if err := fc.Load(); err == nil {
		t.Fatalf("Load() error = nil, want error for missing file")
	}

	got := len(fc.WorkingDaysInMonth(Date(2024, time.January, 1)))
	want := len(WorkingDaysInMonth(Date(2024, time.January, 1)))
	if got != want {
		t.Errorf("WorkingDaysInMonth = %d, want %d", got, want)
	}

	if _, err := fc.WorkingDaysInInterval(Date(2024, time.May, 2), Date(2024, time.May, 1)); err == nil {
		t.Errorf("WorkingDaysInInterval() error = nil for reversed range")
	}
}
