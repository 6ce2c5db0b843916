package cmd

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/stagehand/cmd/stagehand/internal/preview"
)

func init() {
	RegisterCommand(&Command{
		Name:  "preview",
		Short: "Render a placement scene to PNG",
		Long: `Render a placement scene to a PNG image.

The scene file describes a viewport, an anchor box, a floating box and
a placement request. Preview runs the positioner once and draws the
outcome, so flip, shift and correction behavior can be eyeballed
before wiring the engine into a host.

Example scene:

  viewport: {width: 800, height: 600}
  padding: 8
  anchor:   {id: trigger, left: 350, top: 500, width: 100, height: 40}
  floating: {id: menu, width: 200, height: 150}
  place:    {side: bottom, align: start, offset: 4, flip: true, shift: true}

Examples:
  stagehand preview scene.yaml
  stagehand preview scene.yaml --out menu.png`,
		Usage: "stagehand preview <scene.yaml> [--out file.png]",
		Run:   runPreview,
	})
}

func runPreview(args []string) error {
	scenePath, out, err := parsePreviewArgs(args)
	if err != nil {
		return err
	}

	scene, err := preview.LoadScene(scenePath)
	if err != nil {
		return err
	}
	logger.Debugf("scene %s: viewport %gx%g, padding %g",
		scenePath, scene.Viewport.Width, scene.Viewport.Height, scene.Padding)

	img, res, err := preview.Render(scene)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", out, err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fmt.Printf("side=%s position=(%.0f, %.0f) scroll=%v\n",
		res.Side, res.Position.X, res.Position.Y, res.Scroll)
	fmt.Printf("wrote %s\n", out)
	return nil
}

// parsePreviewArgs extracts the scene path and the output path, which
// defaults to the scene path with a .png extension.
func parsePreviewArgs(args []string) (scenePath, out string, err error) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--out" || arg == "-o":
			if i+1 >= len(args) {
				return "", "", fmt.Errorf("--out requires a file path")
			}
			out = args[i+1]
			i++
		case strings.HasPrefix(arg, "--out="):
			out = strings.TrimPrefix(arg, "--out=")
		case scenePath == "":
			scenePath = arg
		default:
			return "", "", fmt.Errorf("unexpected argument %q", arg)
		}
	}

	if scenePath == "" {
		return "", "", fmt.Errorf("scene file is required\n\nUsage: stagehand preview <scene.yaml> [--out file.png]")
	}
	if out == "" {
		out = strings.TrimSuffix(scenePath, filepath.Ext(scenePath)) + ".png"
	}
	return scenePath, out, nil
}
