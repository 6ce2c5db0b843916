package cmd

import (
	"fmt"

	"github.com/go-drift/stagehand/cmd/stagehand/internal/project"
	"github.com/go-drift/stagehand/pkg/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "check",
		Short: "Validate the project's tuning",
		Long: `Load the project's stagehand.yaml, or the built-in defaults when the
file is absent, and print the effective tuning.

Fails when the file cannot be parsed or a value is out of range
(guard threshold below 2, non-increasing layer bands, and so on).

Examples:
  stagehand check
  stagehand check ./services/dashboard`,
		Usage: "stagehand check [directory]",
		Run:   runCheck,
	})
}

func runCheck(args []string) error {
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

	tuning, err := config.LoadOptional(root)
	if err != nil {
		return fmt.Errorf("%s: %w", config.FileName, err)
	}

	fmt.Printf("Project: %s (%s)\n", info.Name, info.ModulePath)
	fmt.Println()
	fmt.Println("Tuning:")
	fmt.Printf("  guard:      window %s, threshold %d\n",
		tuning.Guard.Window.Std(), tuning.Guard.Threshold)
	fmt.Printf("  placement:  padding %gpx, retry %s x %d\n",
		tuning.Placement.Padding, tuning.Placement.RetryInterval.Std(), tuning.Placement.RetryBudget)
	fmt.Printf("  layers:     container %d < overlay %d < topmost %d\n",
		tuning.Layers.Container, tuning.Layers.Overlay, tuning.Layers.Topmost)

	return nil
}
