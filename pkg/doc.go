// Package pkg provides the libraries behind foldergraph, which clusters the
// nodes of a force-directed note graph by the folder they live in.
//
// # Overview
//
// Every rendered frame, each folder gets a soft circular enclosure (a
// "puddle") around the convex hull of its notes, and notes from other
// folders that drift into it are pushed back out. The physics simulation is
// external: the engine only nudges positions it is handed and tells the
// simulation which nodes to pin and release.
//
// The packages are organized in three layers:
//
//  1. Engine: [geom] (QuickHull and point math), [cluster] (one folder's
//     hull, center, radius and push), [session] (all clusters of one view)
//  2. Inputs and outputs: [membership] (path to folder index, vault scan and
//     watcher), [sim] (force messages and a reference simulation),
//     [render] (viewport, canvas, SVG and Graphviz export)
//  3. Support: [headless] (a view without a UI), [config], [errors],
//     [observability], [buildinfo]
//
// # Architecture
//
// The data flow of one frame:
//
//	simulation step (positions)
//	         ↓
//	[session.Session.ApplyForces] → pin/release → [sim.Sender]
//	         ↓
//	[session.Session.Update] → hull, center, radius → [render.Canvas]
//
// # Quick Start
//
// Build a session over a host and drive it once per frame:
//
//	idx := membership.New()
//	_ = membership.Scan(ctx, "notes", idx)
//
//	sess := session.Build(host, idx,
//	    session.WithSender(sim.NewChanSender(inbox)),
//	    session.WithCanvas(render.NewFrame()),
//	)
//	defer sess.Close()
//
//	for range ticker.C {
//	    sess.Tick()
//	}
//
// The [headless] package wires all of this to the reference simulation; the
// foldergraph CLI is built on it.
//
// [geom]: github.com/matzehuels/foldergraph/pkg/geom
// [cluster]: github.com/matzehuels/foldergraph/pkg/cluster
// [session]: github.com/matzehuels/foldergraph/pkg/session
// [session.Session.ApplyForces]: github.com/matzehuels/foldergraph/pkg/session#Session.ApplyForces
// [session.Session.Update]: github.com/matzehuels/foldergraph/pkg/session#Session.Update
// [membership]: github.com/matzehuels/foldergraph/pkg/membership
// [sim]: github.com/matzehuels/foldergraph/pkg/sim
// [sim.Sender]: github.com/matzehuels/foldergraph/pkg/sim#Sender
// [render]: github.com/matzehuels/foldergraph/pkg/render
// [render.Canvas]: github.com/matzehuels/foldergraph/pkg/render#Canvas
// [headless]: github.com/matzehuels/foldergraph/pkg/headless
// [config]: github.com/matzehuels/foldergraph/pkg/config
// [errors]: github.com/matzehuels/foldergraph/pkg/errors
// [observability]: github.com/matzehuels/foldergraph/pkg/observability
// [buildinfo]: github.com/matzehuels/foldergraph/pkg/buildinfo
package pkg
