package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aristath/deadline/internal/config"
)

// execute runs the root command with isolated config paths and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))

	base := []string{
		"--global-config", filepath.Join(dir, "global.json"),
		"--config", filepath.Join(dir, "project.json"),
		"--log-level", "error",
	}
	root.SetArgs(append(base, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func testdataScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func TestDemoCommand(t *testing.T) {
	out, err := execute(t, "", "demo")
	if err != nil {
		t.Fatalf("demo failed: %v", err)
	}

	for _, want := range []string{
		"T1: duration=3 deadline=5 value=100",
		"Initial report:",
		"Pending tasks (3):",
		"Final report:",
		"Total value earned: 230",
		"Journal:",
		"task.completed   3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestReplCommand(t *testing.T) {
	out, err := execute(t, "ADD_TASK A 1 1 5\nRUN_ALL\nREPORT\nEXIT\n", "repl")
	if err != nil {
		t.Fatalf("repl failed: %v", err)
	}
	if !strings.Contains(out, "Total value earned: 5") {
		t.Errorf("unexpected repl output:\n%s", out)
	}
}

func TestRunCommand(t *testing.T) {
	good := testdataScenario(t, "good.yaml", `
tasks:
  - {id: A, duration: 2, deadline: 2, value: 10}
  - {id: B, duration: 2, deadline: 2, value: 20}
`)

	out, err := execute(t, "", "run", good)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, "good") || !strings.Contains(out, "value=10 completed=A expired=B") {
		t.Errorf("unexpected run output:\n%s", out)
	}
}

func TestRunCommandReportsFailures(t *testing.T) {
	bad := testdataScenario(t, "bad.yaml", "tasks:\n  - {id: A, duration: 0, deadline: 2}\n")

	out, err := execute(t, "", "run", bad)
	if err == nil || !strings.Contains(err.Error(), "1 scenario(s) failed") {
		t.Fatalf("expected failure summary, got %v", err)
	}
	if !strings.Contains(out, "FAILED") {
		t.Errorf("expected FAILED line, got:\n%s", out)
	}
}

func TestRunCommandRequiresArgs(t *testing.T) {
	if _, err := execute(t, "", "run"); err == nil {
		t.Error("expected error without scenarios")
	}
}

func TestConfigShowAppliesFlags(t *testing.T) {
	out, err := execute(t, "", "--log-format", "json", "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}

	var cfg config.Config
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("config show output is not JSON: %v\n%s", err, out)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "error" {
		t.Errorf("flags not applied: %+v", cfg.Log)
	}
	if cfg.Batch.Concurrency != config.DefaultConfig().Batch.Concurrency {
		t.Errorf("expected default concurrency, got %d", cfg.Batch.Concurrency)
	}
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--global-config", "", "--config", path, "config", "init"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	loaded, err := config.Load("", path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if loaded.Server.Addr != config.DefaultConfig().Server.Addr {
		t.Errorf("unexpected addr %q", loaded.Server.Addr)
	}

	root = NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--global-config", "", "--config", path, "config", "init"})
	if err := root.Execute(); err == nil {
		t.Error("expected refusal to overwrite without --force")
	}
}

func TestInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"batch":{"concurrency":0}}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--global-config", "", "--config", path, "demo"})
	if err := root.Execute(); err == nil {
		t.Error("expected invalid config to fail")
	}
}

func TestSessionCloseLogsJournalFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Journal.Enabled = true

	var logs bytes.Buffer
	a := &app{cfg: cfg, logger: zerolog.New(&logs)}

	ctx := context.Background()
	s, err := a.newSession(ctx, "broken")
	if err != nil {
		t.Fatalf("newSession failed: %v", err)
	}
	if s.journal == nil {
		t.Fatal("expected a journal for the session")
	}
	s.journal.Close()

	if counts := s.close(ctx); counts != nil {
		t.Errorf("expected no counts from a closed journal, got %v", counts)
	}
	if !strings.Contains(logs.String(), "failed to read journal counts") {
		t.Errorf("expected a warning about journal counts, got:\n%s", logs.String())
	}
}
