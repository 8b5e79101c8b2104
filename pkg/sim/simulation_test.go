package sim

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/matzehuels/foldergraph/pkg/geom"
)

func newTestSimulation(t *testing.T, ids ...string) *Simulation {
	t.Helper()
	s := New(DefaultParams())
	for i, id := range ids {
		if err := s.AddNode(id, Phyllotaxis(i)); err != nil {
			t.Fatalf("AddNode(%q) error: %v", id, err)
		}
	}
	return s
}

func position(s *Simulation, id string) geom.Point {
	for _, n := range s.Snapshot() {
		if n.ID == id {
			return n.Position
		}
	}
	return geom.Point{X: math.NaN(), Y: math.NaN()}
}

func TestAddNodeDuplicate(t *testing.T) {
	s := newTestSimulation(t, "a")
	if err := s.AddNode("a", geom.Point{}); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("AddNode() error = %v, want %v", err, ErrDuplicateNode)
	}
}

func TestAddLinkUnknown(t *testing.T) {
	s := newTestSimulation(t, "a")
	if err := s.AddLink("a", "b"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("AddLink() error = %v, want %v", err, ErrUnknownNode)
	}
	if err := s.AddLink("x", "a"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("AddLink() error = %v, want %v", err, ErrUnknownNode)
	}
}

func TestApplyPinAndRelease(t *testing.T) {
	s := newTestSimulation(t, "a", "b", "c")
	target := geom.Point{X: 500, Y: 500}

	if !s.Apply(PinMessage("s1", "a", target)) {
		t.Fatal("Apply(pin) = false, want true")
	}
	for range 10 {
		s.Step()
	}
	if got := position(s, "a"); got != target {
		t.Errorf("pinned position = %v, want %v", got, target)
	}
	if !s.Pinned("a") {
		t.Error("Pinned() = false, want true")
	}

	s.Apply(UnpinMessage("s1", "a"))
	if s.Pinned("a") {
		t.Error("Pinned() = true after release")
	}
	s.Step()
	if got := position(s, "a"); got == target {
		t.Error("released node should move under native forces")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	s := newTestSimulation(t, "a")
	p := geom.Point{X: 1, Y: 1}
	s.Apply(PinMessage("s1", "a", p))
	s.Apply(PinMessage("s1", "a", p))
	if got := position(s, "a"); got != p {
		t.Errorf("position = %v, want %v", got, p)
	}
	s.Apply(UnpinMessage("s1", "a"))
	s.Apply(UnpinMessage("s1", "a"))
	if s.Pinned("a") {
		t.Error("Pinned() = true after double release")
	}
}

func TestApplyIgnoresClosedSession(t *testing.T) {
	s := newTestSimulation(t, "a")
	if !s.Apply(EndSessionMessage("s1")) {
		t.Fatal("Apply(end session) = false, want true")
	}
	if !s.Closed("s1") {
		t.Error("Closed() = false, want true")
	}
	if s.Apply(PinMessage("s1", "a", geom.Point{X: 9, Y: 9})) {
		t.Error("Apply() accepted a message from a closed session")
	}
	if s.Pinned("a") {
		t.Error("node pinned by a closed session")
	}
	if !s.Apply(PinMessage("s2", "a", geom.Point{X: 9, Y: 9})) {
		t.Error("Apply() rejected a message from an open session")
	}
}

func TestApplyIgnoresUnknownNode(t *testing.T) {
	s := newTestSimulation(t, "a")
	if s.Apply(PinMessage("", "missing", geom.Point{})) {
		t.Error("Apply() accepted a message for an unknown node")
	}
	if s.Apply(Message{}) {
		t.Error("Apply() accepted an empty message")
	}
}

func TestStepSeparatesNodes(t *testing.T) {
	s := New(DefaultParams())
	_ = s.AddNode("a", geom.Point{X: 0, Y: 0})
	_ = s.AddNode("b", geom.Point{X: 0, Y: 0})
	s.Step()
	if position(s, "a") == position(s, "b") {
		t.Error("coincident nodes should be pushed apart")
	}
}

func TestStepStopsWhenCold(t *testing.T) {
	params := DefaultParams()
	params.AlphaDecay = 0.5
	params.AlphaMin = 0.2
	s := New(params)
	_ = s.AddNode("a", geom.Point{X: 1, Y: 1})
	for range 10 {
		s.Step()
	}
	if got := s.Steps(); got != 3 {
		t.Errorf("Steps() = %d, want 3", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestSimulation(t, "a", "b")
	in := make(chan Message, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, in, time.Millisecond) }()

	in <- PinMessage("s1", "a", geom.Point{X: 7, Y: 7})
	deadline := time.After(2 * time.Second)
	for !s.Pinned("a") {
		select {
		case <-deadline:
			t.Fatal("pin message was not applied")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want %v", err, context.Canceled)
	}
}

func TestRunStopsOnClosedChannel(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestSimulation(t, "a")
	in := make(chan Message)
	close(in)
	if err := s.Run(context.Background(), in, time.Hour); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}

func TestPhyllotaxisDistinct(t *testing.T) {
	seen := make(map[geom.Point]bool)
	for i := range 100 {
		p := Phyllotaxis(i)
		if seen[p] {
			t.Fatalf("Phyllotaxis(%d) = %v repeats an earlier position", i, p)
		}
		seen[p] = true
	}
}
