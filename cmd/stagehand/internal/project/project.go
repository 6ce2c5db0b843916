// Package project resolves the enclosing Go module so stagehand
// commands can find and name the project they operate on.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// Info describes the resolved project.
type Info struct {
	Root       string
	ModulePath string
	// Name is the last path element of the module, with any major
	// version suffix stripped.
	Name string
}

// FindRoot walks up from start to the directory containing go.mod.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go module (no go.mod found above %s)", start)
		}
		dir = parent
	}
}

// Resolve reads the module path out of dir's go.mod and derives the
// project name from it.
func Resolve(dir string) (*Info, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return nil, fmt.Errorf("could not determine module path from go.mod")
	}

	return &Info{
		Root:       dir,
		ModulePath: path,
		Name:       nameFrom(path),
	}, nil
}

func nameFrom(modulePath string) string {
	base := modulePath
	if prefix, _, ok := module.SplitPathVersion(modulePath); ok {
		base = prefix
	}
	parts := strings.Split(base, "/")
	name := parts[len(parts)-1]
	if name == "" {
		return "project"
	}
	return name
}
