// Package config defines the tunable parameters of the overlay engine
// and loads them from an optional stagehand.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the optional per-project configuration file.
const FileName = "stagehand.yaml"

// Duration wraps time.Duration so values can be written as "100ms" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a duration string like "250ms" or "2s".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in time.Duration notation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Tuning holds every adjustable constant of the engine. Zero values are
// replaced with defaults at load time, so a partial file is valid.
type Tuning struct {
	Guard     GuardTuning     `yaml:"guard"`
	Placement PlacementTuning `yaml:"placement"`
	Layers    LayerTuning     `yaml:"layers"`
}

// GuardTuning controls the registration cascade guard.
type GuardTuning struct {
	// Window is the sliding window over which registrations are counted.
	Window Duration `yaml:"window,omitempty"`
	// Threshold is the attempt count, including the current attempt,
	// at which registrations inside the window are denied. Minimum 2.
	Threshold int `yaml:"threshold,omitempty"`
}

// PlacementTuning controls the anchored positioner.
type PlacementTuning struct {
	// Padding keeps floating content this many pixels from the viewport edge.
	Padding float64 `yaml:"padding,omitempty"`
	// RetryInterval is the delay between lookups for missing elements.
	RetryInterval Duration `yaml:"retryInterval,omitempty"`
	// RetryBudget is how many lookups are attempted before giving up.
	RetryBudget int `yaml:"retryBudget,omitempty"`
}

// LayerTuning assigns the base z-index band of each portal category.
type LayerTuning struct {
	Container int `yaml:"container,omitempty"`
	Overlay   int `yaml:"overlay,omitempty"`
	Topmost   int `yaml:"topmost,omitempty"`
}

// Default returns the engine's built-in tuning.
func Default() Tuning {
	return Tuning{
		Guard: GuardTuning{
			Window:    Duration(100 * time.Millisecond),
			Threshold: 3,
		},
		Placement: PlacementTuning{
			Padding:       8,
			RetryInterval: Duration(25 * time.Millisecond),
			RetryBudget:   40,
		},
		Layers: LayerTuning{
			Container: 40,
			Overlay:   60,
			Topmost:   80,
		},
	}
}

// Load reads and validates a tuning file. Unset fields fall back to
// their defaults before validation.
func Load(path string) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var t Tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	t.applyDefaults()
	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}

// LoadOptional reads stagehand.yaml from dir if present. A missing file
// yields the default tuning.
func LoadOptional(dir string) (Tuning, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Tuning{}, fmt.Errorf("failed to stat %s: %w", FileName, err)
	}
	return Load(path)
}

// applyDefaults fills zero-valued fields from Default.
func (t *Tuning) applyDefaults() {
	def := Default()
	if t.Guard.Window <= 0 {
		t.Guard.Window = def.Guard.Window
	}
	if t.Guard.Threshold == 0 {
		t.Guard.Threshold = def.Guard.Threshold
	}
	if t.Placement.Padding == 0 {
		t.Placement.Padding = def.Placement.Padding
	}
	if t.Placement.RetryInterval <= 0 {
		t.Placement.RetryInterval = def.Placement.RetryInterval
	}
	if t.Placement.RetryBudget == 0 {
		t.Placement.RetryBudget = def.Placement.RetryBudget
	}
	if t.Layers.Container == 0 {
		t.Layers.Container = def.Layers.Container
	}
	if t.Layers.Overlay == 0 {
		t.Layers.Overlay = def.Layers.Overlay
	}
	if t.Layers.Topmost == 0 {
		t.Layers.Topmost = def.Layers.Topmost
	}
}

// Validate checks the tuning for values the engine cannot operate with.
func (t Tuning) Validate() error {
	if t.Guard.Threshold < 2 {
		return fmt.Errorf("guard.threshold must be at least 2, got %d", t.Guard.Threshold)
	}
	if t.Guard.Window.Std() <= 0 {
		return fmt.Errorf("guard.window must be positive, got %s", t.Guard.Window.Std())
	}
	if t.Placement.Padding < 0 {
		return fmt.Errorf("placement.padding must not be negative, got %v", t.Placement.Padding)
	}
	if t.Placement.RetryInterval.Std() <= 0 {
		return fmt.Errorf("placement.retryInterval must be positive, got %s", t.Placement.RetryInterval.Std())
	}
	if t.Placement.RetryBudget < 1 {
		return fmt.Errorf("placement.retryBudget must be at least 1, got %d", t.Placement.RetryBudget)
	}
	if t.Layers.Container >= t.Layers.Overlay || t.Layers.Overlay >= t.Layers.Topmost {
		return fmt.Errorf("layer bases must increase: container=%d overlay=%d topmost=%d",
			t.Layers.Container, t.Layers.Overlay, t.Layers.Topmost)
	}
	return nil
}
