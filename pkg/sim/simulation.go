package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/foldergraph/pkg/geom"
)

var (
	// ErrDuplicateNode is returned by [Simulation.AddNode] for a known ID.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrUnknownNode is returned by [Simulation.AddLink] when an endpoint is
	// missing.
	ErrUnknownNode = errors.New("unknown node")
)

// Params are the layout constants of a [Simulation].
type Params struct {
	Repulsion    float64 // charge between every pair of nodes
	LinkDistance float64 // rest length of link springs
	LinkStrength float64 // spring stiffness in [0, 1]
	Gravity      float64 // pull toward the origin
	Damping      float64 // velocity loss per step in [0, 1]
	AlphaDecay   float64 // cooling per step
	AlphaMin     float64 // the layout stops moving below this alpha
}

// DefaultParams returns constants close to the host graph view.
func DefaultParams() Params {
	return Params{
		Repulsion:    900,
		LinkDistance: 60,
		LinkStrength: 0.3,
		Gravity:      0.02,
		Damping:      0.4,
		AlphaDecay:   0.0228,
		AlphaMin:     0.001,
	}
}

// NodeState is a snapshot of one simulated node.
type NodeState struct {
	ID       string
	Position geom.Point
	Pinned   bool
}

type simNode struct {
	id  string
	pos geom.Point
	vel geom.Point
	fix *geom.Point
}

type link struct{ from, to int }

// Simulation owns authoritative node positions. All methods are safe for
// concurrent use; [Simulation.Run] is the usual driver.
type Simulation struct {
	mu     sync.Mutex
	params Params
	nodes  []*simNode
	index  map[string]int
	links  []link
	closed map[string]struct{}
	alpha  float64
	steps  int
}

// New creates an empty simulation.
func New(params Params) *Simulation {
	return &Simulation{
		params: params,
		index:  make(map[string]int),
		closed: make(map[string]struct{}),
		alpha:  1,
	}
}

// Phyllotaxis returns the initial position of the i-th node, spiralling out
// from the origin so no two nodes start on top of each other.
func Phyllotaxis(i int) geom.Point {
	const initialRadius = 10.0
	angle := float64(i) * math.Pi * (3 - math.Sqrt(5))
	r := initialRadius * math.Sqrt(0.5+float64(i))
	return geom.Point{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
}

// AddNode adds a node at p.
func (s *Simulation) AddNode(id string, p geom.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	s.index[id] = len(s.nodes)
	s.nodes = append(s.nodes, &simNode{id: id, pos: p})
	return nil
}

// AddLink connects two nodes with a spring.
func (s *Simulation) AddLink(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	j, ok := s.index[to]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	s.links = append(s.links, link{from: i, to: j})
	return nil
}

// Len returns the number of nodes.
func (s *Simulation) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// Alpha returns the current temperature of the layout.
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// Steps returns how many steps have run.
func (s *Simulation) Steps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps
}

// Apply processes one message and reports whether it changed anything.
// Messages for unknown nodes or closed sessions are ignored.
func (s *Simulation) Apply(m Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.Session != "" {
		if _, ok := s.closed[m.Session]; ok {
			return false
		}
	}
	if m.EndSession {
		if m.Session == "" {
			return false
		}
		s.closed[m.Session] = struct{}{}
		return true
	}
	if m.ForceNode == nil {
		return false
	}
	i, ok := s.index[m.ForceNode.ID]
	if !ok {
		return false
	}

	n := s.nodes[i]
	if p, ok := m.Position(); ok {
		n.fix = &p
		n.pos = p
		n.vel = geom.Point{}
	} else {
		n.fix = nil
	}
	if m.Run {
		s.alpha = max(s.alpha, 0.3)
	}
	return true
}

// Closed reports whether session was announced as ended.
func (s *Simulation) Closed(session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.closed[session]
	return ok
}

// Pinned reports whether node id is currently fixed by a pin message.
func (s *Simulation) Pinned(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	return ok && s.nodes[i].fix != nil
}

// Snapshot returns the state of every node in insertion order.
func (s *Simulation) Snapshot() []NodeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]NodeState, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = NodeState{ID: n.id, Position: n.pos, Pinned: n.fix != nil}
	}
	return out
}

// Step advances the layout by one tick. It does nothing once the layout has
// cooled below AlphaMin.
func (s *Simulation) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alpha < s.params.AlphaMin {
		return
	}
	s.steps++
	alpha := s.alpha

	for i, a := range s.nodes {
		for j := i + 1; j < len(s.nodes); j++ {
			b := s.nodes[j]
			d := r2.Sub(b.pos, a.pos)
			dist2 := r2.Norm2(d)
			if dist2 == 0 {
				d = geom.Point{X: 1e-3 * float64(j-i), Y: 1e-3}
				dist2 = r2.Norm2(d)
			}
			f := r2.Scale(s.params.Repulsion*alpha/dist2, d)
			a.vel = r2.Sub(a.vel, f)
			b.vel = r2.Add(b.vel, f)
		}
	}

	for _, l := range s.links {
		a, b := s.nodes[l.from], s.nodes[l.to]
		d := r2.Sub(b.pos, a.pos)
		dist := r2.Norm(d)
		if dist == 0 {
			continue
		}
		k := (dist - s.params.LinkDistance) / dist * s.params.LinkStrength * alpha * 0.5
		f := r2.Scale(k, d)
		a.vel = r2.Add(a.vel, f)
		b.vel = r2.Sub(b.vel, f)
	}

	for _, n := range s.nodes {
		n.vel = r2.Sub(n.vel, r2.Scale(s.params.Gravity*alpha, n.pos))
		if n.fix != nil {
			n.pos = *n.fix
			n.vel = geom.Point{}
			continue
		}
		n.vel = r2.Scale(1-s.params.Damping, n.vel)
		n.pos = r2.Add(n.pos, n.vel)
	}

	s.alpha -= s.alpha * s.params.AlphaDecay
}

// Run applies messages from in and steps the layout every interval until ctx
// is cancelled or in is closed. Messages are drained before each step so a
// pin issued during a frame takes effect on the next one.
func (s *Simulation) Run(ctx context.Context, in <-chan Message, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-in:
			if !ok {
				return nil
			}
			s.Apply(m)
		case <-ticker.C:
			s.Step()
		}
	}
}
