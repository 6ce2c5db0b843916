// Package preview turns a declarative placement scene into a rendered
// image, so flip, shift and correction behavior can be inspected
// without a UI host.
package preview

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/stagehand/pkg/anchor"
)

// Scene is the yaml model for one placement preview.
type Scene struct {
	Viewport Extent  `yaml:"viewport"`
	Padding  float64 `yaml:"padding"`
	Anchor   Box     `yaml:"anchor"`
	Floating Box     `yaml:"floating"`
	Place    Place   `yaml:"place"`
}

// Extent is a width/height pair.
type Extent struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Box is a labeled rectangle. The floating box's Left/Top are ignored;
// the placement decides where it goes.
type Box struct {
	ID     string  `yaml:"id"`
	Left   float64 `yaml:"left"`
	Top    float64 `yaml:"top"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Place mirrors anchor.Request in yaml-friendly form.
type Place struct {
	Side            string  `yaml:"side"`
	Align           string  `yaml:"align"`
	Offset          float64 `yaml:"offset"`
	Flip            bool    `yaml:"flip"`
	Shift           bool    `yaml:"shift"`
	MatchAnchorSize bool    `yaml:"matchAnchorSize"`
}

// LoadScene reads, defaults and validates a scene file.
func LoadScene(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("failed to read scene: %w", err)
	}

	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scene{}, fmt.Errorf("failed to parse scene: %w", err)
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return Scene{}, err
	}
	return s, nil
}

func (s *Scene) applyDefaults() {
	if s.Viewport.Width == 0 {
		s.Viewport.Width = 800
	}
	if s.Viewport.Height == 0 {
		s.Viewport.Height = 600
	}
	if s.Padding == 0 {
		s.Padding = 8
	}
	if s.Anchor.ID == "" {
		s.Anchor.ID = "anchor"
	}
	if s.Floating.ID == "" {
		s.Floating.ID = "floating"
	}
}

// Validate rejects scenes the renderer cannot draw.
func (s Scene) Validate() error {
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must have positive width and height")
	}
	if s.Anchor.Width <= 0 || s.Anchor.Height <= 0 {
		return fmt.Errorf("anchor %q must have positive width and height", s.Anchor.ID)
	}
	if s.Floating.Width <= 0 || s.Floating.Height <= 0 {
		return fmt.Errorf("floating %q must have positive width and height", s.Floating.ID)
	}
	if s.Anchor.ID == s.Floating.ID {
		return fmt.Errorf("anchor and floating boxes need distinct ids, both are %q", s.Anchor.ID)
	}
	if _, err := parseSide(s.Place.Side); err != nil {
		return err
	}
	if _, err := parseAlign(s.Place.Align); err != nil {
		return err
	}
	return nil
}

// Request converts the scene's place block into an anchor request.
func (s Scene) Request() (anchor.Request, error) {
	side, err := parseSide(s.Place.Side)
	if err != nil {
		return anchor.Request{}, err
	}
	align, err := parseAlign(s.Place.Align)
	if err != nil {
		return anchor.Request{}, err
	}

	return anchor.Request{
		AnchorID:        s.Anchor.ID,
		FloatingID:      s.Floating.ID,
		Side:            side,
		Align:           align,
		Offset:          s.Place.Offset,
		Flip:            s.Place.Flip,
		Shift:           s.Place.Shift,
		MatchAnchorSize: s.Place.MatchAnchorSize,
	}, nil
}

func parseSide(raw string) (anchor.Side, error) {
	switch raw {
	case "", "bottom":
		return anchor.SideBottom, nil
	case "top":
		return anchor.SideTop, nil
	case "left":
		return anchor.SideLeft, nil
	case "right":
		return anchor.SideRight, nil
	}
	return 0, fmt.Errorf("unknown side %q (want bottom, top, left or right)", raw)
}

func parseAlign(raw string) (anchor.Align, error) {
	switch raw {
	case "", "center":
		return anchor.AlignCenter, nil
	case "start":
		return anchor.AlignStart, nil
	case "end":
		return anchor.AlignEnd, nil
	}
	return 0, fmt.Errorf("unknown align %q (want center, start or end)", raw)
}
