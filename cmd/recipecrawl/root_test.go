package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "recipecrawl" {
			t.Errorf("expected use 'recipecrawl', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
	})

	t.Run("has expected subcommands", func(t *testing.T) {
		t.Parallel()

		names := make(map[string]bool)
		for _, sub := range cmd.Commands() {
			names[strings.Fields(sub.Use)[0]] = true
		}
		for _, want := range []string{"crawl", "robots", "export", "init", "version"} {
			if !names[want] {
				t.Errorf("expected subcommand %q, have %v", want, names)
			}
		}
	})
}

// TestVersionCmd tests version output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "recipecrawl") {
		t.Errorf("unexpected version output %q", buf.String())
	}
}
