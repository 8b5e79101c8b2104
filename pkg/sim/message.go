package sim

import (
	"sync"

	"github.com/matzehuels/foldergraph/pkg/geom"
)

// ForceNode overrides the position of one node. Nil coordinates release the
// node back to the native forces.
type ForceNode struct {
	ID string   `json:"id"`
	X  *float64 `json:"x"`
	Y  *float64 `json:"y"`
}

// Message is a request to the simulation.
type Message struct {
	Session   string     `json:"session,omitempty"`
	ForceNode *ForceNode `json:"forceNode,omitempty"`
	Run       bool       `json:"run"`

	// EndSession tells the simulation that Session was torn down. Later
	// messages tagged with it are ignored.
	EndSession bool `json:"endSession,omitempty"`
}

// PinMessage builds a request to fix node id at p.
func PinMessage(session, id string, p geom.Point) Message {
	x, y := p.X, p.Y
	return Message{
		Session:   session,
		ForceNode: &ForceNode{ID: id, X: &x, Y: &y},
		Run:       true,
	}
}

// UnpinMessage builds a request to release node id.
func UnpinMessage(session, id string) Message {
	return Message{
		Session:   session,
		ForceNode: &ForceNode{ID: id},
		Run:       true,
	}
}

// EndSessionMessage builds the notification sent when a session closes.
func EndSessionMessage(session string) Message {
	return Message{Session: session, EndSession: true}
}

// IsRelease reports whether m releases a node.
func (m Message) IsRelease() bool {
	return m.ForceNode != nil && (m.ForceNode.X == nil || m.ForceNode.Y == nil)
}

// Position returns the pinned position of a pin message.
func (m Message) Position() (geom.Point, bool) {
	if m.ForceNode == nil || m.IsRelease() {
		return geom.Point{}, false
	}
	return geom.Point{X: *m.ForceNode.X, Y: *m.ForceNode.Y}, true
}

// Sender delivers messages to the simulation. Send must not block the
// caller for longer than it takes to enqueue.
type Sender interface {
	Send(Message)
}

// SenderFunc adapts a function to [Sender].
type SenderFunc func(Message)

// Send calls f(m).
func (f SenderFunc) Send(m Message) { f(m) }

// Queue is an in-memory, unbounded [Sender]. It is safe for concurrent use.
type Queue struct {
	mu   sync.Mutex
	msgs []Message
}

// Send appends m to the queue.
func (q *Queue) Send(m Message) {
	q.mu.Lock()
	q.msgs = append(q.msgs, m)
	q.mu.Unlock()
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.msgs)
}

// Drain returns the queued messages in send order and empties the queue.
func (q *Queue) Drain() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	msgs := q.msgs
	q.msgs = nil
	return msgs
}

// ChanSender forwards messages to a channel without blocking the caller.
// When the channel is full, messages wait in an overflow buffer and are
// flushed, in order, on later sends or by [ChanSender.Flush]. Releases are
// sent exactly once, so nothing is ever discarded.
type ChanSender struct {
	ch      chan<- Message
	mu      sync.Mutex
	pending []Message
}

// NewChanSender returns a sender writing to ch.
func NewChanSender(ch chan<- Message) *ChanSender {
	return &ChanSender{ch: ch}
}

// Send enqueues m behind any messages still waiting in the overflow buffer.
func (s *ChanSender) Send(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, m)
	s.flushLocked()
}

// Flush moves as many buffered messages into the channel as fit and returns
// how many are still waiting.
func (s *ChanSender) Flush() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
	return len(s.pending)
}

// Pending returns how many messages are waiting for channel capacity.
func (s *ChanSender) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *ChanSender) flushLocked() {
	sent := 0
loop:
	for _, m := range s.pending {
		select {
		case s.ch <- m:
			sent++
		default:
			break loop
		}
	}
	s.pending = s.pending[sent:]
	if len(s.pending) == 0 {
		s.pending = nil
	}
}

var (
	_ Sender = (*Queue)(nil)
	_ Sender = (*ChanSender)(nil)
	_ Sender = SenderFunc(nil)
)
