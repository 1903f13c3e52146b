package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCmdShowsHelp(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "export") {
		t.Fatalf("help output should mention the export command: %s", out.String())
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "starctl") {
		t.Fatalf("unexpected version output: %s", out.String())
	}
}

func TestExportFailsWithoutConfiguration(t *testing.T) {
	t.Setenv("MASTODON_ACCESS_TOKEN", "")
	t.Setenv("MASTODON_INSTANCE", "")
	t.Setenv("MASTODON_USERNAME", "")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"export"})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected configuration error")
	}
}
