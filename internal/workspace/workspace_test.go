package workspace

import (
	"reflect"
	"testing"
)

const sampleMetadata = `{
  "workspace_root": "/ws",
  "workspace_members": ["id-cli", "id-core", "id-util"],
  "packages": [
    {
      "id": "id-core",
      "name": "core",
      "version": "1.0.0",
      "manifest_path": "/ws/crates/core/Cargo.toml",
      "targets": [{"name": "core", "kind": ["lib"]}],
      "dependencies": [{"name": "util", "req": "^1.0", "kind": ""}]
    },
    {
      "id": "id-cli",
      "name": "cli",
      "version": "1.0.0",
      "manifest_path": "/ws/crates/cli/Cargo.toml",
      "publish": [],
      "targets": [{"name": "cli", "kind": ["bin"]}],
      "dependencies": [
        {"name": "core", "req": "^1.0", "kind": ""},
        {"name": "serde", "req": "^1", "kind": ""}
      ]
    },
    {
      "id": "id-util",
      "name": "util",
      "version": "1.0.0",
      "manifest_path": "/ws/crates/util/Cargo.toml",
      "publish": null,
      "targets": [{"name": "util", "kind": ["lib"]}],
      "dependencies": []
    }
  ]
}`

func parseSample(t *testing.T) *Metadata {
	t.Helper()
	meta, err := Parse([]byte(sampleMetadata))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return meta
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("{")); err == nil {
		t.Fatal("Parse of invalid JSON succeeded, want error")
	}
}

func TestPackageByIDAndIsMember(t *testing.T) {
	meta := parseSample(t)
	if pkg := meta.PackageByID("id-core"); pkg == nil || pkg.Name != "core" {
		t.Fatalf("PackageByID(id-core) = %+v", pkg)
	}
	if meta.PackageByID("id-missing") != nil {
		t.Fatal("PackageByID of unknown id should be nil")
	}
	if !meta.IsMember("id-cli") {
		t.Fatal("id-cli should be a member")
	}
	if meta.IsMember("id-serde") {
		t.Fatal("id-serde should not be a member")
	}
}

func TestPublishNullVersusEmptyList(t *testing.T) {
	meta := parseSample(t)
	util := meta.PackageByID("id-util")
	if !util.PublishAllowed() {
		t.Fatal("publish null should allow publishing")
	}
	core := meta.PackageByID("id-core")
	if !core.PublishAllowed() {
		t.Fatal("absent publish field should allow publishing")
	}
	cli := meta.PackageByID("id-cli")
	if cli.PublishAllowed() {
		t.Fatal("empty publish list should forbid publishing")
	}
}

func TestHasBinTarget(t *testing.T) {
	meta := parseSample(t)
	if !meta.PackageByID("id-cli").HasBinTarget() {
		t.Fatal("cli should have a bin target")
	}
	if meta.PackageByID("id-core").HasBinTarget() {
		t.Fatal("core should not have a bin target")
	}
}

func TestDependentsSkipsNonMembersAndOutOfWorkspaceDeps(t *testing.T) {
	meta := parseSample(t)
	core := meta.PackageByID("id-core")
	deps := meta.Dependents(core)
	if len(deps) != 1 {
		t.Fatalf("core has %d dependents, want 1", len(deps))
	}
	if deps[0].Package.Name != "cli" || deps[0].Dependency.Req != "^1.0" {
		t.Fatalf("unexpected dependent: %+v", deps[0])
	}

	util := meta.PackageByID("id-util")
	utilDeps := meta.Dependents(util)
	if len(utilDeps) != 1 || utilDeps[0].Package.Name != "core" {
		t.Fatalf("unexpected util dependents: %+v", utilDeps)
	}
}

func TestSortedMemberIDsDependencyOrder(t *testing.T) {
	meta := parseSample(t)
	got := meta.SortedMemberIDs()
	want := []string{"id-util", "id-core", "id-cli"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedMemberIDs = %v, want %v", got, want)
	}
}

func TestSortedMemberIDsStableUnderPermutation(t *testing.T) {
	meta := parseSample(t)
	want := meta.SortedMemberIDs()

	permutations := [][]string{
		{"id-util", "id-cli", "id-core"},
		{"id-core", "id-util", "id-cli"},
		{"id-cli", "id-util", "id-core"},
	}
	for _, members := range permutations {
		meta.Members = members
		if got := meta.SortedMemberIDs(); !reflect.DeepEqual(got, want) {
			t.Fatalf("members %v sorted to %v, want %v", members, got, want)
		}
	}
}

func TestSortedMemberIDsCycleFallsBackToNameOrder(t *testing.T) {
	meta := &Metadata{
		Members: []string{"id-b", "id-a"},
		Packages: []Package{
			{ID: "id-a", Name: "a", Dependencies: []Dependency{{Name: "b"}}},
			{ID: "id-b", Name: "b", Dependencies: []Dependency{{Name: "a"}}},
		},
	}
	got := meta.SortedMemberIDs()
	want := []string{"id-a", "id-b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("cyclic SortedMemberIDs = %v, want %v", got, want)
	}
}
