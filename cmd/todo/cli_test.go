package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todo/internal/config"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"TODO_ADDR", "TODO_DB_PATH", "TODO_LOG_LEVEL", "TODO_LOG_FORMAT", "TODO_PAGE_SIZE", "TODO_MAX_PAGE_SIZE"} {
		t.Setenv(key, "")
	}
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCommandAppliesFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "todo.toml")
	if err := os.WriteFile(cfgPath, []byte("addr = \":9999\"\nlog_level = \"error\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := runCLI(t, "--config", cfgPath, "--db", filepath.Join(dir, "x.db"), "config")
	if err != nil {
		t.Fatalf("config command: %v", err)
	}
	for _, want := range []string{`addr = ":9999"`, `log_level = "error"`, "x.db"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestInvalidLogLevelFlag(t *testing.T) {
	_, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "none.toml"), "--log-level", "verbose", "config")
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Fatalf("expected log level error, got %v", err)
	}
}

func TestSeedCommand(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "todo.db")
	cfgPath := filepath.Join(dir, "none.toml")

	out, err := runCLI(t, "--config", cfgPath, "--db", db, "--log-level", "error", "seed")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "categories created: 4, skipped: 0, tasks created: 3") {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = runCLI(t, "--config", cfgPath, "--db", db, "--log-level", "error", "seed")
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if !strings.Contains(out, "categories created: 0, skipped: 4, tasks created: 0") {
		t.Fatalf("unexpected rerun output %q", out)
	}
}

func TestSeedCommandCustomFile(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.yaml")
	if err := os.WriteFile(fixture, []byte("categories: [Garden]\ntasks:\n  - {title: Water, category: Garden}\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	out, err := runCLI(t, "--config", filepath.Join(dir, "none.toml"), "--db", filepath.Join(dir, "todo.db"), "--log-level", "error", "seed", "--file", fixture)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "categories created: 1, skipped: 0, tasks created: 1") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestServerOptionsFollowEnvironment(t *testing.T) {
	cfg := config.Default()
	if opts := serverOptions(cfg); !opts.Debug {
		t.Fatal("expected debug mode outside production")
	}

	cfg.Environment = config.EnvironmentProduction
	opts := serverOptions(cfg)
	if opts.Debug {
		t.Fatal("expected release mode in production")
	}
	if opts.APIPrefix != config.DefaultAPIPrefix || opts.MaxPageSize != config.DefaultMaxPageSize {
		t.Fatalf("unexpected options: %+v", opts)
	}
}
