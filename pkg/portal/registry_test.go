package portal_test

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/stagehand/pkg/cascade"
	"github.com/go-drift/stagehand/pkg/portal"
	stagetest "github.com/go-drift/stagehand/pkg/testing"
)

func note(label string) stagetest.NoteContent {
	return stagetest.NoteContent{Label: label}
}

func TestRegistry_Register_PreservesOrder(t *testing.T) {
	reg := portal.NewRegistry()

	reg.Register("a", portal.CategoryOverlay, note("a"))
	reg.Register("b", portal.CategoryOverlay, note("b"))
	reg.Register("c", portal.CategoryOverlay, note("c"))

	got := reg.OrderedContent(portal.CategoryOverlay)
	want := []portal.ID{"a", "b", "c"}
	assertIDs(t, got, want)
}

func TestRegistry_Register_UpdateKeepsPosition(t *testing.T) {
	reg := portal.NewRegistry()

	reg.Register("a", portal.CategoryOverlay, note("a"))
	reg.Register("b", portal.CategoryOverlay, note("b1"))
	reg.Register("c", portal.CategoryOverlay, note("c"))

	// Updating b's content must not move it.
	reg.Register("b", portal.CategoryOverlay, note("b2"))

	got := reg.OrderedContent(portal.CategoryOverlay)
	assertIDs(t, got, []portal.ID{"a", "b", "c"})

	if got[1].Content.(stagetest.NoteContent).Label != "b2" {
		t.Errorf("content = %+v, want updated b2", got[1].Content)
	}

	s := reg.Stats()
	if s.Registrations != 3 || s.Updates != 1 {
		t.Errorf("Stats = %+v, want 3 registrations and 1 update", s)
	}
}

func TestRegistry_Unregister_ThenReregisterMovesToEnd(t *testing.T) {
	reg := portal.NewRegistry()

	reg.Register("a", portal.CategoryOverlay, note("a"))
	reg.Register("b", portal.CategoryOverlay, note("b"))
	reg.Register("c", portal.CategoryOverlay, note("c"))

	reg.Unregister("b")
	assertIDs(t, reg.OrderedContent(portal.CategoryOverlay), []portal.ID{"a", "c"})

	// A fresh registration allocates a fresh order slot; slots are
	// never reused.
	reg.Register("b", portal.CategoryOverlay, note("b"))
	assertIDs(t, reg.OrderedContent(portal.CategoryOverlay), []portal.ID{"a", "c", "b"})
}

func TestRegistry_Unregister_UnknownIsNoOp(t *testing.T) {
	reg := portal.NewRegistry()
	notified := 0
	cancel := reg.Subscribe(portal.CategoryOverlay, func() { notified++ })
	defer cancel()

	reg.Unregister("ghost")
	reg.Unregister("ghost")

	if notified != 0 {
		t.Errorf("notified %d times for no-op unregisters, want 0", notified)
	}
}

func TestRegistry_Register_EmptyID(t *testing.T) {
	reg := portal.NewRegistry()
	if err := reg.Register("", portal.CategoryOverlay, note("x")); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestRegistry_CategoryIsolation(t *testing.T) {
	reg := portal.NewRegistry()

	overlayNotified := 0
	containerNotified := 0
	cancelO := reg.Subscribe(portal.CategoryOverlay, func() { overlayNotified++ })
	defer cancelO()
	cancelC := reg.Subscribe(portal.CategoryContainer, func() { containerNotified++ })
	defer cancelC()

	reg.Register("dialog", portal.CategoryOverlay, note("dialog"))
	reg.Register("panel", portal.CategoryContainer, note("panel"))
	reg.Unregister("dialog")

	if overlayNotified != 2 {
		t.Errorf("overlay notified %d times, want 2", overlayNotified)
	}
	if containerNotified != 1 {
		t.Errorf("container notified %d times, want 1", containerNotified)
	}

	if got := reg.OrderedContent(portal.CategoryContainer); len(got) != 1 || got[0].ID != "panel" {
		t.Errorf("container content = %+v, want just panel", got)
	}
}

func TestRegistry_RegisterChild_RendersAfterParent(t *testing.T) {
	reg := portal.NewRegistry()

	reg.Register("menu", portal.CategoryOverlay, note("menu"))
	reg.Register("toast", portal.CategoryOverlay, note("toast"))
	reg.RegisterChild("menu", "menu-sub", note("submenu"))
	reg.RegisterChild("menu", "menu-hint", note("hint"))

	got := reg.OrderedContent(portal.CategoryOverlay)
	assertIDs(t, got, []portal.ID{"menu", "menu-sub", "menu-hint", "toast"})

	if got[1].Parent != "menu" || got[2].Parent != "menu" {
		t.Errorf("children should carry their parent id, got %+v", got)
	}
	if got[0].Parent != "" || got[3].Parent != "" {
		t.Errorf("top-level fragments should have no parent, got %+v", got)
	}
}

func TestRegistry_RegisterChild_UnknownParent(t *testing.T) {
	reg := portal.NewRegistry()

	err := reg.RegisterChild("ghost", "child", note("x"))
	if !errors.Is(err, portal.ErrRegistrationConflict) {
		t.Errorf("err = %v, want ErrRegistrationConflict", err)
	}
}

func TestRegistry_RegisterChild_RejectsChildOfChild(t *testing.T) {
	reg := portal.NewRegistry()

	reg.Register("menu", portal.CategoryOverlay, note("menu"))
	reg.RegisterChild("menu", "sub", note("sub"))

	// A child is not a portal, so it cannot take children of its own.
	err := reg.RegisterChild("sub", "subsub", note("subsub"))
	if !errors.Is(err, portal.ErrRegistrationConflict) {
		t.Errorf("err = %v, want ErrRegistrationConflict", err)
	}
}

func TestRegistry_RegisterChild_RejectsReparenting(t *testing.T) {
	reg := portal.NewRegistry()

	reg.Register("menu", portal.CategoryOverlay, note("menu"))
	reg.Register("dialog", portal.CategoryOverlay, note("dialog"))
	reg.RegisterChild("menu", "shared", note("x"))

	err := reg.RegisterChild("dialog", "shared", note("x"))
	if !errors.Is(err, portal.ErrRegistrationConflict) {
		t.Errorf("err = %v, want ErrRegistrationConflict", err)
	}
}

func TestRegistry_RegisterChild_RejectsTopLevelShadow(t *testing.T) {
	reg := portal.NewRegistry()

	reg.Register("menu", portal.CategoryOverlay, note("menu"))
	reg.Register("toast", portal.CategoryOverlay, note("toast"))

	err := reg.RegisterChild("menu", "toast", note("x"))
	if !errors.Is(err, portal.ErrRegistrationConflict) {
		t.Errorf("err = %v, want ErrRegistrationConflict", err)
	}
}

func TestRegistry_Register_RejectsScopedID(t *testing.T) {
	reg := portal.NewRegistry()

	reg.Register("menu", portal.CategoryOverlay, note("menu"))
	reg.RegisterChild("menu", "sub", note("sub"))

	err := reg.Register("sub", portal.CategoryOverlay, note("sub"))
	if !errors.Is(err, portal.ErrRegistrationConflict) {
		t.Errorf("err = %v, want ErrRegistrationConflict", err)
	}
}

func TestRegistry_RegisterChild_UpdateContent(t *testing.T) {
	reg := portal.NewRegistry()

	reg.Register("menu", portal.CategoryOverlay, note("menu"))
	reg.RegisterChild("menu", "sub", note("v1"))
	if err := reg.RegisterChild("menu", "sub", note("v2")); err != nil {
		t.Fatalf("re-registering a child under the same parent: %v", err)
	}

	got := reg.OrderedContent(portal.CategoryOverlay)
	assertIDs(t, got, []portal.ID{"menu", "sub"})
	if got[1].Content.(stagetest.NoteContent).Label != "v2" {
		t.Errorf("child content = %+v, want v2", got[1].Content)
	}
}

func TestRegistry_Unregister_RemovesChildren(t *testing.T) {
	reg := portal.NewRegistry()

	reg.Register("menu", portal.CategoryOverlay, note("menu"))
	reg.RegisterChild("menu", "sub", note("sub"))
	reg.Unregister("menu")

	if got := reg.OrderedContent(portal.CategoryOverlay); len(got) != 0 {
		t.Fatalf("content after unregister = %+v, want empty", got)
	}
	if reg.Has("sub") {
		t.Error("children should be released with their parent")
	}

	// The child id is free again.
	if err := reg.Register("sub", portal.CategoryOverlay, note("sub")); err != nil {
		t.Errorf("released child id should be registrable, got %v", err)
	}
}

func TestRegistry_UnregisterChild(t *testing.T) {
	reg := portal.NewRegistry()

	reg.Register("menu", portal.CategoryOverlay, note("menu"))
	reg.RegisterChild("menu", "sub", note("sub"))

	reg.UnregisterChild("menu", "sub")
	assertIDs(t, reg.OrderedContent(portal.CategoryOverlay), []portal.ID{"menu"})

	// Mismatched pairs are no-ops.
	reg.UnregisterChild("menu", "sub")
	reg.UnregisterChild("ghost", "sub")
}

func TestRegistry_Subscribe_CancelStopsCallbacks(t *testing.T) {
	reg := portal.NewRegistry()

	notified := 0
	cancel := reg.Subscribe(portal.CategoryOverlay, func() { notified++ })

	reg.Register("a", portal.CategoryOverlay, note("a"))
	cancel()
	reg.Register("b", portal.CategoryOverlay, note("b"))

	if notified != 1 {
		t.Errorf("notified %d times, want 1", notified)
	}
}

func TestRegistry_Subscribe_ReentrantReadsAllowed(t *testing.T) {
	reg := portal.NewRegistry()

	var seen []portal.ID
	cancel := reg.Subscribe(portal.CategoryOverlay, func() {
		// Callbacks run outside the registry lock, so reads and even
		// writes from inside a callback must not deadlock.
		for _, f := range reg.OrderedContent(portal.CategoryOverlay) {
			seen = append(seen, f.ID)
		}
	})
	defer cancel()

	reg.Register("a", portal.CategoryOverlay, note("a"))
	if len(seen) != 1 || seen[0] != "a" {
		t.Errorf("seen = %v, want [a]", seen)
	}
}

func TestRegistry_Guard_BreaksFeedbackLoop(t *testing.T) {
	clock := stagetest.NewFakeClock()
	guard := cascade.NewGuard(100*time.Millisecond, 3, cascade.WithClock(clock))
	reg := portal.NewRegistry(portal.WithGuard(guard))

	captured := stagetest.CaptureErrors(t)

	// A consumer that re-registers its portal on every notification
	// models the registration-cascade bug. The guard must stop it.
	cancel := reg.Subscribe(portal.CategoryOverlay, func() {
		reg.Register("loop", portal.CategoryOverlay, note("again"))
	})
	defer cancel()

	reg.Register("loop", portal.CategoryOverlay, note("first"))

	if guard.Denials() == 0 {
		t.Error("expected the guard to suppress the cascade")
	}
	if len(captured.Errors()) == 0 {
		t.Error("expected a cascade diagnostic")
	}
	// The portal itself survives with its last accepted content.
	if !reg.Has("loop") {
		t.Error("suppression must not unregister the portal")
	}
}

func TestRegistry_Guard_DeniedRegisterIsSilentNoOp(t *testing.T) {
	clock := stagetest.NewFakeClock()
	guard := cascade.NewGuard(100*time.Millisecond, 2, cascade.WithClock(clock))
	reg := portal.NewRegistry(portal.WithGuard(guard))

	if err := reg.Register("menu", portal.CategoryOverlay, note("v1")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	// Denied by the guard: no error, no content change.
	if err := reg.Register("menu", portal.CategoryOverlay, note("v2")); err != nil {
		t.Fatalf("denied register should return nil, got %v", err)
	}

	got := reg.OrderedContent(portal.CategoryOverlay)
	if got[0].Content.(stagetest.NoteContent).Label != "v1" {
		t.Errorf("content = %+v, want original v1", got[0].Content)
	}
	if reg.Stats().Denials != 1 {
		t.Errorf("Denials = %d, want 1", reg.Stats().Denials)
	}
}

func TestRegistry_Guard_UnregisterForgetsWindow(t *testing.T) {
	clock := stagetest.NewFakeClock()
	guard := cascade.NewGuard(100*time.Millisecond, 2, cascade.WithClock(clock))
	reg := portal.NewRegistry(portal.WithGuard(guard))

	reg.Register("menu", portal.CategoryOverlay, note("v1"))
	reg.Unregister("menu")

	// A remount straight after teardown starts with a clean window.
	if err := reg.Register("menu", portal.CategoryOverlay, note("v2")); err != nil {
		t.Fatalf("remount register: %v", err)
	}
	if !reg.Has("menu") {
		t.Error("remount should be accepted after Unregister")
	}
}

func TestRegistry_Stats(t *testing.T) {
	reg := portal.NewRegistry()

	reg.Register("a", portal.CategoryOverlay, note("a"))
	reg.RegisterChild("a", "a1", note("a1"))
	reg.Register("b", portal.CategoryContainer, note("b"))

	s := reg.Stats()
	if s.Portals != 2 {
		t.Errorf("Portals = %d, want 2", s.Portals)
	}
	if s.Children != 1 {
		t.Errorf("Children = %d, want 1", s.Children)
	}
	if s.Registrations != 3 {
		t.Errorf("Registrations = %d, want 3", s.Registrations)
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[portal.ID]bool)
	for i := 0; i < 100; i++ {
		id := portal.NewID()
		if id == "" {
			t.Fatal("NewID returned empty id")
		}
		if seen[id] {
			t.Fatalf("NewID returned duplicate %q", id)
		}
		seen[id] = true
	}
}

func assertIDs(t *testing.T, got []portal.Fragment, want []portal.ID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d fragments %v, want %v", len(got), ids(got), want)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("fragment ids = %v, want %v", ids(got), want)
		}
	}
}

func ids(fs []portal.Fragment) []portal.ID {
	out := make([]portal.ID, len(fs))
	for i, f := range fs {
		out[i] = f.ID
	}
	return out
}
