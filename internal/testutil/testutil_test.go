package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestWriteStubCreatesExecutableThatSucceeds(t *testing.T) {
	dir := t.TempDir()
	stubPath := filepath.Join(dir, "ok-stub")
	WriteStub(t, dir, "ok-stub")

	info, err := os.Stat(stubPath)
	if err != nil {
		t.Fatalf("stat stub: %v", err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("expected mode 0755, got %#o", info.Mode().Perm())
	}

	cmd := exec.Command(stubPath)
	if err := cmd.Run(); err != nil {
		t.Fatalf("expected success exit, got %v", err)
	}
}

func TestWriteStubWithExitCreatesExecutableWithRequestedExitCode(t *testing.T) {
	dir := t.TempDir()
	stubPath := filepath.Join(dir, "exit-stub")
	WriteStubWithExit(t, dir, "exit-stub", 7)

	cmd := exec.Command(stubPath)
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected non-zero exit status")
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T", err)
	}
	if exitErr.ExitCode() != 7 {
		t.Fatalf("expected exit code 7, got %d", exitErr.ExitCode())
	}
}

func TestWriteStubWithOutputPrintsOutput(t *testing.T) {
	dir := t.TempDir()
	stubPath := WriteStubWithOutput(t, dir, "out-stub", "first\nsecond's line")

	out, err := exec.Command(stubPath).Output()
	if err != nil {
		t.Fatalf("run stub: %v", err)
	}
	if string(out) != "first\nsecond's line\n" {
		t.Fatalf("unexpected output %q", string(out))
	}
}

func TestWriteStubScriptBranchesOnArgs(t *testing.T) {
	dir := t.TempDir()
	stubPath := WriteStubScript(t, dir, "branch-stub", "if [ \"$1\" = yes ]; then exit 0; fi\nexit 3\n")

	if err := exec.Command(stubPath, "yes").Run(); err != nil {
		t.Fatalf("expected success for yes, got %v", err)
	}
	if err := exec.Command(stubPath, "no").Run(); err == nil {
		t.Fatal("expected failure for no")
	}
}
