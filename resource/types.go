package resource

// Handle is an opaque reference to a foreign object in a table.
// Handle 0 is reserved and always invalid (the foreign null).
type Handle uint32

// Owner identifies who keeps a reference alive: a local frame depth, or
// OwnerGlobal for promoted references.
type Owner uint32

// OwnerGlobal owns references that outlive every local frame.
const OwnerGlobal Owner = 0

// Event types for reference lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	}
	return "unknown"
}

// Event represents a reference lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Owner  Owner
	Type   EventType
}

// Observer receives notifications about reference lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnResourceEvent calls f(e).
func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Backend provides the underlying storage mechanism for references.
type Backend interface {
	// Create stores a value and returns a handle.
	Create(owner Owner, value any) (Handle, error)

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// Drop removes a reference and returns (value, true) if it was live.
	Drop(handle Handle) (any, bool)

	// Close releases all references held by the backend.
	Close() error
}

// Dropper is optionally implemented by referenced values that need cleanup.
type Dropper interface {
	Drop()
}
