package main

import (
	"os"
	"path/filepath"
	"testing"

	"icon-server/internal/ico"
)

const logo = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 8 8"><rect width="8" height="8" fill="#123456"/></svg>`

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "logo.svg")
	out := filepath.Join(dir, "favicon.ico")
	if err := os.WriteFile(in, []byte(logo), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	if err := run(in, out, "16,32,256", 1); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	icon, err := ico.Parse(data)
	if err != nil {
		t.Fatalf("Output is not a valid ICO: %v", err)
	}
	if got := icon.Sizes(); len(got) != 3 || got[2] != 256 {
		t.Errorf("Expected sizes [16 32 256], got %v", got)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "logo.svg")
	os.WriteFile(in, []byte(logo), 0644)

	if err := run("", "x.ico", "16", 1); err == nil {
		t.Error("Expected error for missing input")
	}
	if err := run(in, filepath.Join(dir, "x.ico"), "16,300", 1); err == nil {
		t.Error("Expected error for out-of-range size")
	}
	if err := run(filepath.Join(dir, "missing.svg"), filepath.Join(dir, "x.ico"), "16", 1); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := os.Stat(filepath.Join(dir, "x.ico")); !os.IsNotExist(err) {
		t.Error("No output should be written on failure")
	}
}
