package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("LogLevel() = %q, want %q", cfg.LogLevel(), DefaultLogLevel)
	}
	if cfg.Headless() {
		t.Errorf("Headless() = true, want false")
	}
	if cfg.InboxDir() != filepath.Join(cfg.DataDir(), "inbox") {
		t.Errorf("InboxDir() = %q", cfg.InboxDir())
	}
	if cfg.DBPath() != filepath.Join(cfg.DataDir(), DBFilename) {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv(EnvPort, "9001")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvDataDir, "/tmp/afm-test")
	t.Setenv(EnvInboxDir, "/tmp/afm-inbox")
	t.Setenv(EnvHeadless, "true")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9001 {
		t.Errorf("Port() = %d, want 9001", cfg.Port())
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("LogLevel() = %q, want debug", cfg.LogLevel())
	}
	if cfg.DataDir() != "/tmp/afm-test" {
		t.Errorf("DataDir() = %q", cfg.DataDir())
	}
	if cfg.InboxDir() != "/tmp/afm-inbox" {
		t.Errorf("InboxDir() = %q", cfg.InboxDir())
	}
	if !cfg.Headless() {
		t.Errorf("Headless() = false, want true")
	}
}

func TestNew_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "port: 9100\nlog_level: warn\ninbox_dir: /tmp/drop\nheadless: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(EnvConfigFile, path)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9100 {
		t.Errorf("Port() = %d, want 9100", cfg.Port())
	}
	if cfg.LogLevel() != "warn" {
		t.Errorf("LogLevel() = %q, want warn", cfg.LogLevel())
	}
	if cfg.InboxDir() != "/tmp/drop" {
		t.Errorf("InboxDir() = %q", cfg.InboxDir())
	}
	if !cfg.Headless() {
		t.Errorf("Headless() = false, want true")
	}
}

func TestNew_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("port: 9100\n"), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvPort, "9200")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9200 {
		t.Errorf("Port() = %d, want 9200", cfg.Port())
	}
}

func TestNew_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("port: [nope\n"), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(EnvConfigFile, path)

	if _, err := New(); err == nil {
		t.Fatalf("malformed config file should fail")
	}
}

func TestNew_InvalidPort(t *testing.T) {
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))

	t.Setenv(EnvPort, "not-a-number")
	if _, err := New(); err == nil {
		t.Fatalf("non-numeric port should fail")
	}

	t.Setenv(EnvPort, "70000")
	if _, err := New(); err == nil {
		t.Fatalf("out-of-range port should fail")
	}
}
