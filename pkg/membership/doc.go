// Package membership maps vault paths to the folder that groups them.
//
// The [Index] is filled from creation events: the host emits one for every
// file and folder when a vault loads and again whenever something is created
// later. Files directly below the vault root belong to no group. Folders
// without children are remembered separately for diagnostics.
//
// Entries are never removed. A file that is moved or deleted keeps its old
// mapping until [Index.Init] resets the tables.
//
// [Scan] replays the load-time events for a directory on disk and [Watcher]
// forwards later creations using fsnotify:
//
//	idx := membership.New()
//	if err := membership.Scan(ctx, "~/notes", idx); err != nil {
//	    return err
//	}
//	group, ok := idx.Lookup("projects/plan.md") // "projects", true
package membership
