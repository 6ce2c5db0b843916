package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGoMod(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindRoot_WalksUpToGoMod(t *testing.T) {
	tmp := t.TempDir()
	writeGoMod(t, tmp, "module example.com/widgets\n\ngo 1.24\n")

	nested := filepath.Join(tmp, "internal", "menu")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	root, err := FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	if root != tmp {
		t.Errorf("FindRoot = %q, want %q", root, tmp)
	}
}

func TestResolve_ModulePathAndName(t *testing.T) {
	tests := []struct {
		name       string
		gomod      string
		wantModule string
		wantName   string
	}{
		{
			"plain path",
			"module github.com/acme/widgets\n\ngo 1.24\n",
			"github.com/acme/widgets",
			"widgets",
		},
		{
			"major version suffix",
			"module github.com/acme/widgets/v3\n\ngo 1.24\n",
			"github.com/acme/widgets/v3",
			"widgets",
		},
		{
			"single element",
			"module widgets\n\ngo 1.24\n",
			"widgets",
			"widgets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeGoMod(t, dir, tt.gomod)

			info, err := Resolve(dir)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if info.ModulePath != tt.wantModule {
				t.Errorf("ModulePath = %q, want %q", info.ModulePath, tt.wantModule)
			}
			if info.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", info.Name, tt.wantName)
			}
			if info.Root != dir {
				t.Errorf("Root = %q, want %q", info.Root, dir)
			}
		})
	}
}

func TestResolve_MissingGoMod(t *testing.T) {
	if _, err := Resolve(t.TempDir()); err == nil {
		t.Fatal("expected an error for a directory without go.mod")
	}
}

func TestResolve_MalformedGoMod(t *testing.T) {
	dir := t.TempDir()
	writeGoMod(t, dir, "this is not a go.mod file\n")

	if _, err := Resolve(dir); err == nil {
		t.Fatal("expected an error for a go.mod without a module directive")
	}
}
