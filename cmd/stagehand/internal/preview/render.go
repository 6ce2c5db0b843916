package preview

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/stagehand/pkg/anchor"
	"github.com/go-drift/stagehand/pkg/geometry"
	stagetest "github.com/go-drift/stagehand/pkg/testing"
)

// Result summarizes where the placement ended up.
type Result struct {
	Side     anchor.Side
	Position geometry.Offset
	Bounds   geometry.Rect
	Scroll   bool
}

var (
	colorBackground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorPadded     = color.RGBA{0xd4, 0xd4, 0xd8, 0xff}
	colorAnchor     = color.RGBA{0xe4, 0xe4, 0xe7, 0xff}
	colorFloating   = color.RGBA{0x93, 0xc5, 0xfd, 0xff}
	colorOutline    = color.RGBA{0x3f, 0x3f, 0x46, 0xff}
	colorLabel      = color.RGBA{0x18, 0x18, 0x1b, 0xff}
)

// Render runs the scene's placement once against an in-memory stage
// and rasterizes the outcome.
func Render(s Scene) (*image.RGBA, Result, error) {
	req, err := s.Request()
	if err != nil {
		return nil, Result{}, err
	}

	doc := stagetest.NewFakeDocument(stagetest.NewFakeClock())
	doc.SetViewport(geometry.RectFromLTWH(0, 0, s.Viewport.Width, s.Viewport.Height))
	doc.AddElement(stagetest.NewFakeElement(s.Anchor.ID,
		geometry.RectFromLTWH(s.Anchor.Left, s.Anchor.Top, s.Anchor.Width, s.Anchor.Height)))
	floating := stagetest.NewFakeElement(s.Floating.ID,
		geometry.RectFromLTWH(0, 0, s.Floating.Width, s.Floating.Height))
	doc.AddElement(floating)

	p := anchor.NewPositioner(doc, anchor.WithPadding(s.Padding))
	session := p.Place(req)
	defer session.Dispose()

	side, _ := session.ResolvedSide()
	pl, _ := floating.LastPlacement()
	res := Result{
		Side:     side,
		Position: pl.Position,
		Bounds:   floating.Bounds(),
		Scroll:   pl.Scroll,
	}
	return rasterize(s, res), res, nil
}

func rasterize(s Scene, res Result) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(s.Viewport.Width), int(s.Viewport.Height)))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	viewport := geometry.RectFromLTWH(0, 0, s.Viewport.Width, s.Viewport.Height)
	strokeRect(img, geometry.UniformInsets(s.Padding).Shrink(viewport), colorPadded)

	anchorRect := geometry.RectFromLTWH(s.Anchor.Left, s.Anchor.Top, s.Anchor.Width, s.Anchor.Height)
	fillRect(img, anchorRect, colorAnchor)
	strokeRect(img, anchorRect, colorOutline)
	label(img, anchorRect.Left+4, anchorRect.Top+14, s.Anchor.ID)

	fillRect(img, res.Bounds, colorFloating)
	strokeRect(img, res.Bounds, colorOutline)
	label(img, res.Bounds.Left+4, res.Bounds.Top+14, s.Floating.ID)

	return img
}

func fillRect(img *image.RGBA, r geometry.Rect, c color.Color) {
	draw.Draw(img, imageRect(r), image.NewUniform(c), image.Point{}, draw.Src)
}

func strokeRect(img *image.RGBA, r geometry.Rect, c color.Color) {
	ir := imageRect(r)
	for x := ir.Min.X; x < ir.Max.X; x++ {
		img.Set(x, ir.Min.Y, c)
		img.Set(x, ir.Max.Y-1, c)
	}
	for y := ir.Min.Y; y < ir.Max.Y; y++ {
		img.Set(ir.Min.X, y, c)
		img.Set(ir.Max.X-1, y, c)
	}
}

func label(img *image.RGBA, x, y float64, text string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colorLabel),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(x), int(y)),
	}
	d.DrawString(text)
}

func imageRect(r geometry.Rect) image.Rectangle {
	return image.Rect(int(r.Left), int(r.Top), int(r.Right), int(r.Bottom))
}
