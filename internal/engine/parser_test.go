package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shaiso/Gantry/internal/domain"
)

const sampleYAML = `
name: ci
on:
  pull_request:
    branches: [master]
  schedule:
    cron: "0 6 * * *"
    timezone: Europe/Rome
  dispatch: true
matrix:
  os: [ubuntu-latest, macos-latest, windows-latest]
  python-version: [3.7, 3.8]
steps:
  - name: Provision
    kind: provision
  - kind: install-dependencies
    packages: [numpy, scipy]
  - kind: run-tests
    command: [pytest, -v]
    timeout_sec: 600
policy:
  max_parallel: 4
  fail_fast: true
`

// --- Parse Tests ---

func TestParse_FullDeclaration(t *testing.T) {
	wf, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if wf.Name != "ci" {
		t.Errorf("expected name ci, got %q", wf.Name)
	}

	if wf.Triggers.PullRequest == nil {
		t.Fatal("pull_request trigger should be set")
	}
	if len(wf.Triggers.PullRequest.Branches) != 1 || wf.Triggers.PullRequest.Branches[0] != "master" {
		t.Errorf("unexpected branches: %v", wf.Triggers.PullRequest.Branches)
	}
	if wf.Triggers.Schedule == nil || wf.Triggers.Schedule.Cron != "0 6 * * *" {
		t.Error("schedule trigger should be set with cron")
	}
	if wf.Triggers.Schedule.Timezone != "Europe/Rome" {
		t.Errorf("unexpected timezone: %q", wf.Triggers.Schedule.Timezone)
	}
	if !wf.Triggers.Dispatch {
		t.Error("dispatch trigger should be set")
	}

	if len(wf.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(wf.Steps))
	}
	if wf.Steps[0].Kind != domain.StepKindProvision {
		t.Errorf("unexpected first step kind: %q", wf.Steps[0].Kind)
	}
	if len(wf.Steps[1].Packages) != 2 {
		t.Errorf("unexpected packages: %v", wf.Steps[1].Packages)
	}
	if wf.Steps[2].TimeoutSec != 600 {
		t.Errorf("unexpected timeout: %d", wf.Steps[2].TimeoutSec)
	}

	if wf.Policy.MaxParallel != 4 || !wf.Policy.FailFast {
		t.Errorf("unexpected policy: %+v", wf.Policy)
	}
}

func TestParse_MatrixPreservesAxisOrder(t *testing.T) {
	wf, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dims := wf.Matrix.Dimensions
	if len(dims) != 2 {
		t.Fatalf("expected 2 axes, got %d", len(dims))
	}
	if dims[0].Name != "os" || dims[1].Name != "python-version" {
		t.Errorf("axis order not preserved: %q, %q", dims[0].Name, dims[1].Name)
	}
}

func TestParse_VersionValuesAreStrings(t *testing.T) {
	// 3.7 и 3.8 без кавычек не должны превращаться в 3.70000...
	wf, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	values := wf.Matrix.Dimensions[1].Values
	if values[0] != "3.7" || values[1] != "3.8" {
		t.Errorf("version values mangled: %v", values)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("matrix: [unclosed"))
	if !errors.Is(err, ErrInvalidDeclaration) {
		t.Errorf("expected ErrInvalidDeclaration, got %v", err)
	}
}

func TestParse_MatrixNotMapping(t *testing.T) {
	_, err := Parse([]byte("matrix: [os, python-version]"))
	if err == nil {
		t.Error("expected error for sequence matrix")
	}
}

// --- Load Tests ---

func writeWorkflow(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write workflow: %v", err)
	}
	return path
}

func TestLoad_NameDefaultsToFilename(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflow(t, dir, "nightly.yaml", `
on:
  dispatch: true
matrix:
  os: [linux]
steps:
  - kind: run-tests
`)

	wf, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wf.Name != "nightly" {
		t.Errorf("expected name nightly, got %q", wf.Name)
	}
}

func TestLoad_InvalidDeclaration(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflow(t, dir, "bad.yaml", `
on:
  dispatch: true
matrix:
  os: []
steps:
  - kind: run-tests
`)

	_, err := Load(path)
	if !errors.Is(err, ErrEmptyAxis) {
		t.Errorf("expected ErrEmptyAxis, got %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "ci.yaml", sampleYAML)
	writeWorkflow(t, dir, "nightly.yml", `
on:
  dispatch: true
matrix:
  os: [linux]
steps:
  - kind: run-tests
`)
	writeWorkflow(t, dir, "notes.txt", "not a workflow")

	workflows, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(workflows) != 2 {
		t.Errorf("expected 2 workflows, got %d", len(workflows))
	}
	if _, ok := workflows["ci"]; !ok {
		t.Error("workflow ci should be loaded")
	}
	if _, ok := workflows["nightly"]; !ok {
		t.Error("workflow nightly should be loaded")
	}
}

func TestLoadDir_DuplicateName(t *testing.T) {
	dir := t.TempDir()
	writeWorkflow(t, dir, "a.yaml", "name: ci\n"+`
on:
  dispatch: true
matrix:
  os: [linux]
steps:
  - kind: run-tests
`)
	writeWorkflow(t, dir, "b.yaml", "name: ci\n"+`
on:
  dispatch: true
matrix:
  os: [macos]
steps:
  - kind: run-tests
`)

	_, err := LoadDir(dir)
	if err == nil {
		t.Error("expected duplicate name error")
	}
}
