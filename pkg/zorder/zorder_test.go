package zorder

import (
	"testing"

	"github.com/go-drift/stagehand/pkg/portal"
)

func TestPolicy_Allocate_BandsAreOrdered(t *testing.T) {
	p := DefaultPolicy()

	container := p.Allocate(portal.CategoryContainer, 0)
	overlay := p.Allocate(portal.CategoryOverlay, 0)
	topmost := p.Allocate(portal.CategoryTopmost, 0)

	if !(container < overlay && overlay < topmost) {
		t.Errorf("bands = %d/%d/%d, want strictly increasing", container, overlay, topmost)
	}
}

func TestPolicy_Allocate_DepthClimbsWithinBand(t *testing.T) {
	p := DefaultPolicy()

	menu := p.Allocate(portal.CategoryOverlay, 0)
	submenu := p.Allocate(portal.CategoryOverlay, 1)
	subsubmenu := p.Allocate(portal.CategoryOverlay, 2)

	if submenu != menu+1 || subsubmenu != menu+2 {
		t.Errorf("depths = %d/%d/%d, want base+0/+1/+2", menu, submenu, subsubmenu)
	}
}

func TestPolicy_Allocate_NegativeDepth(t *testing.T) {
	p := DefaultPolicy()
	if got := p.Allocate(portal.CategoryOverlay, -3); got != p.Base(portal.CategoryOverlay) {
		t.Errorf("Allocate with negative depth = %d, want band base", got)
	}
}

func TestPolicy_Resolve_OverrideWins(t *testing.T) {
	p := DefaultPolicy()

	if got := p.Resolve(portal.CategoryOverlay, 2, 9999); got != 9999 {
		t.Errorf("Resolve with override = %d, want 9999", got)
	}
	if got := p.Resolve(portal.CategoryOverlay, 2, 0); got != p.Allocate(portal.CategoryOverlay, 2) {
		t.Errorf("Resolve without override = %d, want allocated value", got)
	}
}

func TestNewPolicy_CustomBases(t *testing.T) {
	p := NewPolicy(100, 200, 300)
	if got := p.Allocate(portal.CategoryTopmost, 5); got != 305 {
		t.Errorf("Allocate = %d, want 305", got)
	}
}

func TestPolicy_Base_UnknownCategory(t *testing.T) {
	p := DefaultPolicy()
	if got := p.Base(portal.Category(42)); got != p.Base(portal.CategoryContainer) {
		t.Errorf("unknown category base = %d, want container base", got)
	}
}
