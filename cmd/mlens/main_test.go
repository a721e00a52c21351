package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/marketlens/internal/analytics"
	"github.com/zulandar/marketlens/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// run executes the CLI with args against a fresh command tree and
// returns captured stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeWorkspace creates a config file and one seeded sqlite experiment,
// returning the config path.
func writeWorkspace(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "marketlens.yaml")
	yaml := "storage:\n  driver: sqlite\n  dir: " + dir + "\n"
	if err := os.WriteFile(configPath, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "exp_a.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	if err := db.AutoMigrate(&models.Agent{}, &models.Action{}, &models.Log{}); err != nil {
		t.Fatalf("migrate seed db: %v", err)
	}
	seed := []any{
		&models.Agent{ID: "c1", Data: `{"role": "customer", "name": "Alice"}`, CreatedAt: base},
		&models.Agent{ID: "b1", Data: `{"role": "business", "name": "Bistro", "rating": 5}`, CreatedAt: base},
		&models.Action{
			ID: "pr1", AgentID: "b1", CreatedAt: base.Add(time.Minute),
			Request: `{"parameters": {"type": "proposal", "to_agent": "c1", "total_price": 12}}`,
			Result:  `{"is_error": false, "content": null}`,
		},
		&models.Action{
			ID: "pay1", AgentID: "c1", CreatedAt: base.Add(2 * time.Minute),
			Request: `{"parameters": {"type": "payment", "to_agent": "b1", "amount": 12}}`,
			Result:  `{"is_error": false, "content": null}`,
		},
		&models.Log{Data: `{"level": "info", "message": "simulation started"}`, CreatedAt: base},
		&models.Log{Data: `{"level": "warn", "message": "slow agent"}`, CreatedAt: base.Add(time.Minute)},
	}
	for _, row := range seed {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed row: %v", err)
		}
	}
	return configPath
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "mlens dev") {
		t.Errorf("output = %q, want version line", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := run(t, "bogus"); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestExperimentsCmd(t *testing.T) {
	configPath := writeWorkspace(t)

	out, err := run(t, "experiments", "-c", configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "NAME") || !strings.Contains(out, "exp_a") {
		t.Errorf("output = %q, want table with exp_a", out)
	}
}

func TestExperimentsCmd_EmptyStore(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "marketlens.yaml")
	if err := os.WriteFile(configPath, []byte("storage:\n  dir: "+dir+"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := run(t, "experiments", "-c", configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No experiments found.") {
		t.Errorf("output = %q, want empty-store notice", out)
	}
}

func TestReportCmd(t *testing.T) {
	configPath := writeWorkspace(t)

	out, err := run(t, "report", "exp_a", "-c", configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var report analytics.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not a JSON report: %v", err)
	}
	sum := report.Analytics.MarketplaceSummary
	if sum.TotalPayments != 1 || sum.TotalProposals != 1 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestReportCmd_OutFile(t *testing.T) {
	configPath := writeWorkspace(t)
	outPath := filepath.Join(t.TempDir(), "report.json")

	out, err := run(t, "report", "exp_a", "-c", configPath, "-o", outPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Report written to") {
		t.Errorf("output = %q, want confirmation line", out)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report file: %v", err)
	}
	var report analytics.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report file is not JSON: %v", err)
	}
}

func TestReportCmd_MissingExperiment(t *testing.T) {
	configPath := writeWorkspace(t)
	if _, err := run(t, "report", "absent", "-c", configPath); err == nil {
		t.Error("expected error for missing experiment")
	}
}

func TestLogsCmd(t *testing.T) {
	configPath := writeWorkspace(t)

	out, err := run(t, "logs", "exp_a", "-c", configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "simulation started") || !strings.Contains(out, "warn") {
		t.Errorf("output = %q, want formatted log lines", out)
	}
}

func TestLogsCmd_Since(t *testing.T) {
	configPath := writeWorkspace(t)

	out, err := run(t, "logs", "exp_a", "-c", configPath,
		"--since", base.Add(30*time.Second).Format(time.RFC3339))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "simulation started") {
		t.Errorf("output = %q, want only entries after --since", out)
	}
	if !strings.Contains(out, "slow agent") {
		t.Errorf("output = %q, want the later entry", out)
	}
}

func TestLogsCmd_Raw(t *testing.T) {
	configPath := writeWorkspace(t)

	out, err := run(t, "logs", "exp_a", "-c", configPath, "--raw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"level": "info"`) {
		t.Errorf("output = %q, want raw JSON entries", out)
	}
}

func TestLogsCmd_BadSince(t *testing.T) {
	configPath := writeWorkspace(t)
	if _, err := run(t, "logs", "exp_a", "-c", configPath, "--since", "yesterday"); err == nil {
		t.Error("expected error for unparseable --since")
	}
}
