// Package main provides tests for the inkwell CLI.
package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/inkwell-sql/inkwell/internal/cli"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("INKWELL_STATE_PATH", ":memory:")

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(out, "inkwell") {
		t.Errorf("version output should contain 'inkwell', got: %s", out)
	}
}

func TestGenerateBootstrapNotebook(t *testing.T) {
	out, err := runRoot(t, "generate", "bootstrap")
	if err != nil {
		t.Fatalf("generate command error = %v", err)
	}

	for _, want := range []string{
		"-- notebook: bootstrap",
		"CREATE TABLE IF NOT EXISTS kernel",
		"CREATE TABLE IF NOT EXISTS code_notebook_cell",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generate output should contain %q, got: %s", want, out)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := runRoot(t, "frobnicate")
	if err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestListShowsBuiltins(t *testing.T) {
	out, err := runRoot(t, "list")
	if err != nil {
		t.Fatalf("list command error = %v", err)
	}
	if !strings.Contains(out, "bootstrap") || !strings.Contains(out, "console") {
		t.Errorf("list should show builtin notebooks, got: %s", out)
	}
}
