package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "setlist.toml")
	content := fmt.Sprintf(`[paths]
cache_dir = %q
log_dir = %q

[fetch]
binary = "yt-dlp"
comment_timeout = 120
description_timeout = 60
min_request_interval = 0
max_comments = 100

[curation]
keywords = ["setlist"]

[logging]
format = "console"
level = "info"
`, filepath.Join(dir, "cache"), filepath.Join(dir, "logs"))

	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCommand(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestStatusCommandEmptyCache(t *testing.T) {
	configPath := writeTestConfig(t)

	output, err := runCommand(t, configPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, status := range []string{"discovered", "extracted", "pending", "approved", "exported", "imported", "excluded"} {
		if !strings.Contains(output, status) {
			t.Fatalf("status output missing %q:\n%s", status, output)
		}
	}
	if !strings.Contains(output, "total") {
		t.Fatalf("status output missing total row:\n%s", output)
	}
}

func TestStreamsListEmpty(t *testing.T) {
	configPath := writeTestConfig(t)

	output, err := runCommand(t, configPath, "streams")
	if err != nil {
		t.Fatalf("streams: %v", err)
	}
	if !strings.Contains(output, "No streams in the cache") {
		t.Fatalf("unexpected output:\n%s", output)
	}
}

func TestAddShowAndSetStatus(t *testing.T) {
	configPath := writeTestConfig(t)

	output, err := runCommand(t, configPath, "add", "--no-fetch", "vid-123")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(output, "vid-123") || !strings.Contains(output, "discovered") {
		t.Fatalf("unexpected add output:\n%s", output)
	}

	output, err = runCommand(t, configPath, "show", "vid-123")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(output, "No parsed songs") {
		t.Fatalf("unexpected show output:\n%s", output)
	}

	output, err = runCommand(t, configPath, "streams", "set-status", "vid-123", "excluded")
	if err != nil {
		t.Fatalf("set-status: %v", err)
	}
	if !strings.Contains(output, "excluded") {
		t.Fatalf("unexpected set-status output:\n%s", output)
	}

	if _, err := runCommand(t, configPath, "streams", "set-status", "vid-123", "imported"); err == nil {
		t.Fatal("expected invalid transition error")
	}
	if _, err := runCommand(t, configPath, "streams", "set-status", "vid-123", "bogus"); err == nil {
		t.Fatal("expected unknown status error")
	}
}

func TestStreamsListJSON(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCommand(t, configPath, "add", "--no-fetch", "vid-json"); err != nil {
		t.Fatalf("add: %v", err)
	}
	output, err := runCommand(t, configPath, "streams", "list", "--json")
	if err != nil {
		t.Fatalf("streams list: %v", err)
	}
	if !strings.Contains(output, `"video_id": "vid-json"`) {
		t.Fatalf("unexpected JSON output:\n%s", output)
	}
}

func TestClearRequiresForce(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCommand(t, configPath, "clear"); err == nil {
		t.Fatal("expected refusal without --force")
	}
	output, err := runCommand(t, configPath, "clear", "--force")
	if err != nil {
		t.Fatalf("clear --force: %v", err)
	}
	if !strings.Contains(output, "Cleared 0 streams") {
		t.Fatalf("unexpected clear output:\n%s", output)
	}
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.toml")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}
}
