package cli

import (
	"path/filepath"
	"strings"
	"testing"

	pkgio "github.com/fzabel/revsynth/pkg/io"
	"github.com/fzabel/revsynth/pkg/pipeline"
)

func TestGenerateCommandWritesBatch(t *testing.T) {
	isolateEnv(t)
	out := filepath.Join(t.TempDir(), "batch.json")

	err := runCommand(t, "generate",
		"--width", "3",
		"--count", "2",
		"--length", "4",
		"--method", "guaranteed",
		"--seed", "42",
		"--output", out)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	batch, err := pkgio.ImportBatch(out)
	if err != nil {
		t.Fatalf("import batch: %v", err)
	}
	if batch.Width != 3 {
		t.Errorf("Width = %d, want 3", batch.Width)
	}
	if batch.Requested != 2 {
		t.Errorf("Requested = %d, want 2", batch.Requested)
	}
	if batch.Generated != 2 {
		t.Errorf("Generated = %d, want 2", batch.Generated)
	}
	if batch.JobID == "" {
		t.Error("JobID should be set")
	}
	if len(batch.Circuits) != 2 {
		t.Fatalf("len(Circuits) = %d, want 2", len(batch.Circuits))
	}
	for i, c := range batch.Circuits {
		if !c.Permutation().IsIdentity() {
			t.Errorf("circuit %d is not an identity: %s", i, c)
		}
		if c.Len() < 4 {
			t.Errorf("circuit %d has %d gates, want >= 4", i, c.Len())
		}
	}
}

func TestGenerateCommandSeedReproducible(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	paths := [2]string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}
	for _, p := range paths {
		err := runCommand(t, "generate",
			"--width", "3", "--count", "3", "--length", "4",
			"--method", "guaranteed", "--seed", "7", "--workers", "1",
			"--output", p)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
	}

	a, err := pkgio.ImportBatch(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	b, err := pkgio.ImportBatch(paths[1])
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Circuits) != len(b.Circuits) {
		t.Fatalf("batch sizes differ: %d vs %d", len(a.Circuits), len(b.Circuits))
	}
	for i := range a.Circuits {
		if !a.Circuits[i].Equal(b.Circuits[i]) {
			t.Errorf("circuit %d differs between identically seeded runs", i)
		}
	}
}

func TestGenerateCommandEnvOverrides(t *testing.T) {
	isolateEnv(t)
	out := filepath.Join(t.TempDir(), "env.json")
	t.Setenv("COUNT", "3")
	t.Setenv("OUTPUT", out)

	err := runCommand(t, "generate",
		"--width", "3", "--length", "4", "--method", "guaranteed", "--seed", "1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	batch, err := pkgio.ImportBatch(out)
	if err != nil {
		t.Fatalf("import batch at OUTPUT path: %v", err)
	}
	if batch.Requested != 3 {
		t.Errorf("Requested = %d, want 3 from COUNT env", batch.Requested)
	}
}

func TestGenerateCommandFlagBeatsEnv(t *testing.T) {
	isolateEnv(t)
	out := filepath.Join(t.TempDir(), "flag.json")
	t.Setenv("COUNT", "9")

	err := runCommand(t, "generate",
		"--width", "3", "--count", "2", "--length", "4",
		"--method", "guaranteed", "--seed", "1", "--output", out)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	batch, err := pkgio.ImportBatch(out)
	if err != nil {
		t.Fatal(err)
	}
	if batch.Requested != 2 {
		t.Errorf("Requested = %d, want 2 (flag over env)", batch.Requested)
	}
}

func TestGenerateCommandInvalidMethod(t *testing.T) {
	isolateEnv(t)

	err := runCommand(t, "generate", "--method", "quantum")
	if err == nil {
		t.Fatal("invalid method should error")
	}
	if !strings.Contains(err.Error(), "invalid method") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestWriteGenerateOutputStoreOnly(t *testing.T) {
	result := &pipeline.Result{Width: 3, TargetLength: 4, JobID: "job-1"}

	path, err := writeGenerateOutput(result, generateOpts{useDB: true})
	if err != nil {
		t.Fatal(err)
	}
	if path != "" {
		t.Errorf("store-only run should not write a file, got %q", path)
	}
}
