// Package sim carries force requests from the folder engine to the physics
// simulation that owns node positions.
//
// # Messages
//
// The engine and the simulation never share memory. Every request is a
// [Message] value sent fire-and-forget:
//
//	{"forceNode": {"id": "notes/a.md", "x": 12.5, "y": -3}, "run": true}   // pin
//	{"forceNode": {"id": "notes/a.md", "x": null, "y": null}, "run": true} // release
//
// Messages carry the ID of the view session that produced them so the
// simulation can drop requests from sessions that were torn down. Pin and
// release are idempotent by node ID, and a receiver may apply them a frame
// late.
//
// # Senders
//
// [Sender] is the outbound channel. [Queue] buffers messages in memory and is
// what tests use to observe traffic; [ChanSender] forwards to a Go channel
// without blocking the render tick.
//
// [Adapter] implements cluster.Forcer on top of a Sender.
//
// # Simulation
//
// [Simulation] is a small force-directed layout (repulsion, link springs,
// gravity, damping) that honours pin and release messages. It stands in for
// the host's layout worker in the headless renderer and the CLI.
package sim
