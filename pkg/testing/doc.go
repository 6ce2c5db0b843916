// Package testing provides fakes for testing overlay engine consumers.
//
// # Quick Start
//
// Build a fake stage, place content against it, and drive time by hand:
//
//	func TestMyMenu(t *testing.T) {
//	    clock := stagetest.NewFakeClock()
//	    doc := stagetest.NewFakeDocument(clock)
//	    doc.SetViewport(geometry.RectFromLTWH(0, 0, 800, 600))
//	    doc.AddElement(stagetest.NewFakeElement("trigger", geometry.RectFromLTWH(100, 100, 80, 32)))
//	    doc.AddElement(stagetest.NewFakeElement("menu", geometry.RectFromLTWH(0, 0, 200, 150)))
//
//	    // ... run placements, then:
//	    clock.Advance(25 * time.Millisecond)
//	    doc.Flush()
//	    doc.Emit(stage.SignalScroll)
//	}
//
// # Capturing Diagnostics
//
// Route engine diagnostics into the test instead of stderr:
//
//	captured := stagetest.CaptureErrors(t)
//	// ... exercise the engine
//	if captured.Count(errors.KindCascade) == 0 {
//	    t.Error("expected a cascade diagnostic")
//	}
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import stagetest "github.com/go-drift/stagehand/pkg/testing"
package testing
