// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about frame ticks, force requests, and membership index
// updates.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the engine free of observability frameworks
//   - Allows different backends (the [prom] subpackage ships a Prometheus one)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetFrameHooks(&myFrameHooks{})
//	    observability.SetForceHooks(&myForceHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Frame().OnFrameStart(ctx, sessionID, len(clusters))
//	// ... recompute enclosures, apply forces ...
//	observability.Frame().OnFrameComplete(ctx, sessionID, len(clusters), forced, duration)
//
// Hooks are called from the render tick and must not block.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Frame Hooks
// =============================================================================

// FrameHooks receives events from the per-frame update pass of a view session.
type FrameHooks interface {
	// OnFrameStart is called before any cluster is recomputed.
	OnFrameStart(ctx context.Context, session string, clusters int)

	// OnFrameComplete is called after forces and enclosures were updated.
	// forced is the number of (cluster, node) pairs being pushed.
	OnFrameComplete(ctx context.Context, session string, clusters, forced int, duration time.Duration)
}

// =============================================================================
// Force Hooks
// =============================================================================

// ForceHooks receives events from the force field.
type ForceHooks interface {
	// OnPin records a pin request sent to the simulation.
	OnPin(ctx context.Context, session, nodeID string)

	// OnUnpin records a release request sent to the simulation.
	OnUnpin(ctx context.Context, session, nodeID string)

	// OnInvariantViolation records a contradiction in the pin/release
	// protocol, such as a node pinned and released in the same frame. err
	// carries the INVARIANT_VIOLATION code.
	OnInvariantViolation(ctx context.Context, session, nodeID string, err error)

	// OnClusterFault records a recovered failure inside one cluster.
	OnClusterFault(ctx context.Context, session, group string, err error)
}

// =============================================================================
// Index Hooks
// =============================================================================

// IndexHooks receives events from the membership index.
type IndexHooks interface {
	// OnLeafRecorded records a file or empty folder entering the index.
	// group is empty for folders.
	OnLeafRecorded(ctx context.Context, path, group string, folder bool)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopFrameHooks is a no-op implementation of FrameHooks.
type NoopFrameHooks struct{}

func (NoopFrameHooks) OnFrameStart(context.Context, string, int)                        {}
func (NoopFrameHooks) OnFrameComplete(context.Context, string, int, int, time.Duration) {}

// NoopForceHooks is a no-op implementation of ForceHooks.
type NoopForceHooks struct{}

func (NoopForceHooks) OnPin(context.Context, string, string)                       {}
func (NoopForceHooks) OnUnpin(context.Context, string, string)                     {}
func (NoopForceHooks) OnInvariantViolation(context.Context, string, string, error) {}
func (NoopForceHooks) OnClusterFault(context.Context, string, string, error)       {}

// NoopIndexHooks is a no-op implementation of IndexHooks.
type NoopIndexHooks struct{}

func (NoopIndexHooks) OnLeafRecorded(context.Context, string, string, bool) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	frameHooks FrameHooks = NoopFrameHooks{}
	forceHooks ForceHooks = NoopForceHooks{}
	indexHooks IndexHooks = NoopIndexHooks{}
	hooksMu    sync.RWMutex
)

// SetFrameHooks registers custom frame hooks.
// This should be called once at application startup before any session runs.
func SetFrameHooks(h FrameHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		frameHooks = h
	}
}

// SetForceHooks registers custom force hooks.
// This should be called once at application startup before any session runs.
func SetForceHooks(h ForceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		forceHooks = h
	}
}

// SetIndexHooks registers custom index hooks.
// This should be called once at application startup before the index is fed.
func SetIndexHooks(h IndexHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		indexHooks = h
	}
}

// Frame returns the registered frame hooks.
func Frame() FrameHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return frameHooks
}

// Force returns the registered force hooks.
func Force() ForceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return forceHooks
}

// Index returns the registered index hooks.
func Index() IndexHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return indexHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	frameHooks = NoopFrameHooks{}
	forceHooks = NoopForceHooks{}
	indexHooks = NoopIndexHooks{}
}
