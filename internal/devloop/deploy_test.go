package devloop

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "DeployTest.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestDeploy(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	dir := t.TempDir()
	script := writeScript(t, dir, "echo deployed from $(basename \"$PWD\")\n")

	var out bytes.Buffer
	if err := Deploy(context.Background(), script, dir, &out); err != nil {
		t.Fatalf("Deploy: %v", err)
	}
	want := "deployed from " + filepath.Base(dir)
	if !strings.Contains(out.String(), want) {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func TestDeployFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	dir := t.TempDir()
	script := writeScript(t, dir, "echo nope >&2\nexit 3\n")

	var out bytes.Buffer
	err := Deploy(context.Background(), script, dir, &out)
	if !errors.Is(err, ErrDeployFailed) {
		t.Fatalf("err = %v, want ErrDeployFailed", err)
	}
	if !strings.Contains(out.String(), "nope") {
		t.Fatalf("stderr not captured: %q", out.String())
	}
}

func TestDeployMissingScript(t *testing.T) {
	err := Deploy(context.Background(), filepath.Join(t.TempDir(), "missing.sh"), "", &bytes.Buffer{})
	if err == nil || errors.Is(err, ErrDeployFailed) {
		t.Fatalf("err = %v, want a start error", err)
	}
}
