package route

import (
	"testing"

	"github.com/wayfarer-sim/wayfarer/internal/network"
)

func TestModeActive(t *testing.T) {
	if !ModeWalk.Active() || !ModeBike.Active() {
		t.Fatal("walk and bike are active modes")
	}
	if ModeDrive.Active() {
		t.Fatal("drive is not an active mode")
	}
}

func TestKeyIsExact(t *testing.T) {
	a := Key(ModeWalk, []network.NodeID{1, 2, 3})
	if a != "walk:1-2-3" {
		t.Fatalf("key = %q", a)
	}
	if Key(ModeBike, []network.NodeID{1, 2, 3}) == a {
		t.Fatal("different modes must produce different keys")
	}
	if Key(ModeWalk, []network.NodeID{1, 2}) == a {
		t.Fatal("different paths must produce different keys")
	}
	// A reordered path is a different route.
	if Key(ModeWalk, []network.NodeID{3, 2, 1}) == a {
		t.Fatal("reversed path must produce a different key")
	}
}

func TestNewCopiesPath(t *testing.T) {
	path := []network.NodeID{1, 2, 3}
	r := New(ModeWalk, path)
	path[0] = 99
	if r.Full[0] != 1 {
		t.Fatal("route must not alias the caller's path slice")
	}
	if len(r.Progress.Path) != 3 || r.Progress.Offset != 0 {
		t.Fatalf("fresh progress = %+v", r.Progress)
	}
}
