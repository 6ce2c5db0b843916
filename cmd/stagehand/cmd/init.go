package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/stagehand/cmd/stagehand/internal/project"
	"github.com/go-drift/stagehand/pkg/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "init",
		Short: "Write a default stagehand.yaml",
		Long: `Write a stagehand.yaml with the engine's default tuning next to the
project's go.mod, ready to edit.

The file is optional: a project without one runs on the same defaults,
and any key removed from the file keeps its default.

Examples:
  stagehand init
  stagehand init ./services/dashboard`,
		Usage: "stagehand init [directory]",
		Run:   runInit,
	})
}

// runInit writes the default tuning file into the project root found at
// or above the given directory (default: the working directory).
func runInit(args []string) error {
	start := "."
	if len(args) > 0 {
		start = args[0]
	}

	root, err := project.FindRoot(start)
	if err != nil {
		return err
	}
	info, err := project.Resolve(root)
	if err != nil {
		return err
	}
	logger.Debugf("project %s at %s", info.ModulePath, root)

	path := filepath.Join(root, config.FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("failed to encode default tuning: %w", err)
	}
	header := fmt.Sprintf("# Engine tuning for %s.\n# Every key is optional; a missing key keeps its default.\n", info.ModulePath)
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.FileName, err)
	}

	logger.Infof("wrote %s", path)
	return nil
}
