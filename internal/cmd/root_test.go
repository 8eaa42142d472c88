package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	if cmd == nil {
		t.Fatal("Root command should not be nil")
	}

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("--help returned error: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "tgrep") {
		t.Errorf("Help text should contain 'tgrep', got: %s", output)
	}

	for _, flag := range []string{"--recursive", "--limit", "--dir", "--line-number", "--no-history", "--once"} {
		if !strings.Contains(output, flag) {
			t.Errorf("Help text should list %s, got: %s", flag, output)
		}
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	if !strings.HasPrefix(cmd.Use, "tgrep") {
		t.Errorf("Expected Use to start with 'tgrep', got '%s'", cmd.Use)
	}

	var historyFound bool
	for _, sub := range cmd.Commands() {
		if sub.Name() == "history" {
			historyFound = true
			names := map[string]bool{}
			for _, c := range sub.Commands() {
				names[c.Name()] = true
			}
			for _, want := range []string{"list", "clear", "export"} {
				if !names[want] {
					t.Errorf("history is missing subcommand %q", want)
				}
			}
		}
	}

	if !historyFound {
		t.Error("Expected a history subcommand")
	}
}

func TestVersionFlag(t *testing.T) {
	cmd := NewRootCommand()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("--version returned error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "version") || !strings.Contains(output, Version) {
		t.Errorf("Version output should contain 'version %s', got: %s", Version, output)
	}
}

func TestRootCommandRejectsExtraArgs(t *testing.T) {
	cmd := NewRootCommand()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"term", "*.txt", "extra"})

	if err := cmd.Execute(); err == nil {
		t.Error("Expected an error for three positional arguments")
	}
}
