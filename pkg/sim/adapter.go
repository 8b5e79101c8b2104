package sim

import (
	"context"

	"github.com/matzehuels/foldergraph/pkg/cluster"
	"github.com/matzehuels/foldergraph/pkg/geom"
	"github.com/matzehuels/foldergraph/pkg/observability"
)

// Adapter turns cluster force requests into simulation messages tagged with
// one session ID. It implements [cluster.Forcer].
type Adapter struct {
	ctx     context.Context
	session string
	out     Sender
	changed func()
	closed  bool
}

// AdapterOption configures an [Adapter].
type AdapterOption func(*Adapter)

// WithChanged registers the redraw request invoked after every pin and
// release.
func WithChanged(fn func()) AdapterOption {
	return func(a *Adapter) { a.changed = fn }
}

// WithContext sets the context passed to observability hooks.
func WithContext(ctx context.Context) AdapterOption {
	return func(a *Adapter) { a.ctx = ctx }
}

// NewAdapter creates an adapter sending on out for the given session.
func NewAdapter(session string, out Sender, opts ...AdapterOption) *Adapter {
	a := &Adapter{ctx: context.Background(), session: session, out: out}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Session returns the session ID stamped on outgoing messages.
func (a *Adapter) Session() string { return a.session }

// Pin sends a pin request for id at p.
func (a *Adapter) Pin(id string, p geom.Point) {
	if a.closed {
		return
	}
	a.out.Send(PinMessage(a.session, id, p))
	observability.Force().OnPin(a.ctx, a.session, id)
	a.redraw()
}

// Unpin sends a release request for id.
func (a *Adapter) Unpin(id string) {
	if a.closed {
		return
	}
	a.out.Send(UnpinMessage(a.session, id))
	observability.Force().OnUnpin(a.ctx, a.session, id)
	a.redraw()
}

// Close announces the end of the session. Pin and release requests after
// Close are dropped. Close is idempotent.
func (a *Adapter) Close() {
	if a.closed {
		return
	}
	a.out.Send(EndSessionMessage(a.session))
	a.closed = true
}

func (a *Adapter) redraw() {
	if a.changed != nil {
		a.changed()
	}
}

var _ cluster.Forcer = (*Adapter)(nil)
