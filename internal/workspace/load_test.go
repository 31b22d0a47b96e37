package workspace

import (
	"strings"
	"testing"

	"github.com/conn-castle/release-train/internal/testutil"
)

func TestLoadParsesCommandOutput(t *testing.T) {
	dir := t.TempDir()
	stub := testutil.WriteStubWithOutput(t, dir, "metadata-tool", sampleMetadata)

	meta, err := Load(dir, []string{stub})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if meta.WorkspaceRoot != "/ws" {
		t.Fatalf("WorkspaceRoot = %q", meta.WorkspaceRoot)
	}
	if len(meta.Packages) != 3 {
		t.Fatalf("got %d packages, want 3", len(meta.Packages))
	}
}

func TestLoadReportsCommandStderr(t *testing.T) {
	dir := t.TempDir()
	stub := testutil.WriteStubScript(t, dir, "metadata-tool", "echo 'no manifest found' >&2\nexit 1\n")

	_, err := Load(dir, []string{stub})
	if err == nil {
		t.Fatal("Load succeeded, want error")
	}
	if !strings.Contains(err.Error(), "no manifest found") {
		t.Fatalf("error %q does not carry the tool's stderr", err)
	}
}

func TestLoadRejectsEmptyCommand(t *testing.T) {
	if _, err := Load(t.TempDir(), []string{}); err == nil {
		t.Fatal("Load with empty command succeeded, want error")
	}
}
