package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/goldhelper/config"
	"github.com/pthm-cable/goldhelper/history"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager, got %v, %v", om, err)
	}

	// All writes are no-ops on a nil manager
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteRun(history.Record{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManager_WritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	rec := history.Record{
		Name:        "Crypt",
		GoldGained:  600,
		Elapsed:     30 * time.Minute,
		CompletedAt: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
	}
	for i := 0; i < 3; i++ {
		if err := om.WriteRun(rec); err != nil {
			t.Fatalf("WriteRun: %v", err)
		}
	}
	if err := om.WriteTelemetry(WindowStats{WindowEndSec: 60, GoldGained: 5}); err != nil {
		t.Fatalf("WriteTelemetry: %v", err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "runs.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("runs.csv has %d lines, want header + 3 rows", len(lines))
	}
	if lines[0] != "completed_at,name,gold_gained,elapsed_sec,gold_per_hour" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2026-02-03T04:05:06Z,Crypt,600,1800,1200" {
		t.Errorf("row = %q", lines[1])
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
	for _, name := range []string{"telemetry.csv", "perf.csv", "bookmarks.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}
}
