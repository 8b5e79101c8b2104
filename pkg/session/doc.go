// Package session groups the nodes of one graph view into folder clusters
// and drives them once per rendered frame.
//
// A [Session] is built once when a view opens. It asks the membership index
// for the folder of every visible node and creates one cluster per folder in
// the order folders are first seen. Folders without visible nodes get no
// cluster. The session is not rebuilt when the index changes later; open a
// new view to pick up new files.
//
// Every frame the host calls [Session.Tick], which recomputes and redraws
// every enclosure and then pushes foreign nodes out of it:
//
//	s := session.Build(host, idx,
//	    session.WithSender(sender),
//	    session.WithCanvas(frame),
//	)
//	defer s.Close()
//	for range ticker.C {
//	    s.Tick()
//	}
//
// # Message protocol
//
// Pushes are reported to the simulation as pin requests tagged with the
// session ID; a node that leaves the zone of the cluster that pushed it gets
// exactly one release request. [Session.Close] releases everything still
// pinned and announces the end of the session, after which the simulation
// ignores anything tagged with its ID.
//
// # Faults
//
// A panic inside one cluster is recovered and logged; the other clusters
// still run that frame. A node released by one cluster after another pinned
// it in the same frame is reported as an invariant violation but left as is.
package session
