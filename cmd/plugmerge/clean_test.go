package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
)

func TestCleanProject(t *testing.T) {
	cfg := newProject(t)
	if _, err := runMerge(context.Background(), &bytes.Buffer{}, cfg, false); err != nil {
		t.Fatalf("runMerge: %v", err)
	}

	var out bytes.Buffer
	if err := cleanProject(&out, cfg); err != nil {
		t.Fatalf("cleanProject: %v", err)
	}
	for _, p := range []string{cfg.OutputPath(), cfg.StateDir()} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still exists", p)
		}
	}
	if !strings.Contains(out.String(), "removed build/Tebex.cs") || !strings.Contains(out.String(), "removed .plugmerge") {
		t.Fatalf("output = %q", out.String())
	}

	out.Reset()
	if err := cleanProject(&out, cfg); err != nil {
		t.Fatalf("second clean: %v", err)
	}
	if strings.TrimSpace(out.String()) != "nothing to clean" {
		t.Fatalf("output = %q", out.String())
	}
}
