// Package resource provides a handle table for foreign object references.
//
// Backends that cannot hand out native pointers (the script backend) map
// integer handles to foreign values here. Every handle records its Owner:
// a local frame depth, or OwnerGlobal for references promoted to outlive
// their creating frame.
//
// # Reference Lifecycle
//
//	local   - created inside a frame, dropped when the frame is popped
//	global  - promoted explicitly, dropped only by an explicit release
//
// # Handle Table
//
//	table := resource.NewTable()
//
//	// Insert a value owned by frame 1
//	h := table.Insert(1, value)
//
//	// Promote: insert the same value as a global
//	g := table.Insert(resource.OwnerGlobal, value)
//
//	// Pop frame 1: every local it owned becomes invalid
//	table.RemoveOwned(1)
//
// # Observers
//
// Register observers to track reference lifecycle events:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    log.Printf("ref %d %s (owner %d)", e.Handle, e.Type, e.Owner)
//	}))
//
// Handles are reused after they are dropped. A backend that must detect a
// stale handle stores a generation id next to the value and compares it on
// lookup, as the script backend does.
package resource
