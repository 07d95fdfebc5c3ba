package cli

import (
	"io"
	"testing"
)

// testCLI returns a CLI that logs nowhere.
func testCLI() *CLI {
	return New(io.Discard, LogInfo)
}

// runCommand executes the root command with args against a fresh CLI.
func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	c := testCLI()
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.Execute()
}

// isolateEnv points config, cache, and generation environment variables at
// the test's temp dirs so host settings cannot leak into command runs.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	for _, name := range []string{"WIDTH", "COUNT", "LENGTH", "DEPTH", "OUTPUT", "USE_DB", "USE_CACHE", "PBS_JOBID", "JOB_ID"} {
		t.Setenv(name, "")
	}
}

func TestNew(t *testing.T) {
	c := testCLI()
	if c == nil {
		t.Fatal("New() returned nil")
	}
	if c.Logger == nil {
		t.Fatal("New() should set a logger")
	}
}

func TestRootCommand(t *testing.T) {
	root := testCLI().RootCommand()

	if root.Use != "revsynth" {
		t.Errorf("root.Use = %q, want %q", root.Use, "revsynth")
	}

	want := map[string]bool{
		"generate":   false,
		"synth":      false,
		"precompute": false,
		"draw":       false,
		"store":      false,
		"serve":      false,
		"cache":      false,
		"completion": false,
	}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestRootCommandUnknown(t *testing.T) {
	if err := runCommand(t, "no-such-command"); err == nil {
		t.Error("unknown subcommand should error")
	}
}

func TestSetLogLevel(t *testing.T) {
	c := testCLI()
	c.SetLogLevel(LogDebug)
	if c.Logger.GetLevel() != LogDebug {
		t.Errorf("log level = %v, want %v", c.Logger.GetLevel(), LogDebug)
	}
}
