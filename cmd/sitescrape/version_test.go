package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadBuildInfo(t *testing.T) {
	t.Parallel()

	info := readBuildInfo()
	if info.Version == "" || info.Commit == "" || info.Date == "" {
		t.Errorf("expected every field to be set, got %+v", info)
	}
}

func TestShortRevision(t *testing.T) {
	t.Parallel()

	if got := shortRevision("0123456789abcdef"); got != "0123456" {
		t.Errorf("expected 0123456, got %q", got)
	}
	if got := shortRevision("abc"); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	t.Run("outputs version info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"sitescrape version", "commit:", "built:"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got %q", want, output)
			}
		}
	})

	t.Run("short output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--short"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != getVersion() {
			t.Errorf("expected %q, got %q", getVersion(), got)
		}
	})
}
