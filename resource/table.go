package resource

import (
	"sync"
)

// Table tracks live foreign references with owner information and observer
// support.
type Table struct {
	backend   *LocalBackend
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

// NewTable creates a new table with a LocalBackend.
func NewTable() *Table {
	return &Table{
		backend: NewLocalBackend(),
	}
}

// Insert adds a value and returns its handle. It returns 0 once the table is
// closed.
func (t *Table) Insert(owner Owner, value any) Handle {
	t.closeMu.RLock()
	if t.closed {
		t.closeMu.RUnlock()
		return 0
	}
	t.closeMu.RUnlock()

	handle, err := t.backend.Create(owner, value)
	if err != nil {
		return 0
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		Owner:  owner,
		Value:  value,
	})

	return handle
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	return t.backend.Get(handle)
}

// Each calls fn for every live reference until fn returns false.
func (t *Table) Each(fn func(Handle, Owner, any) bool) {
	t.backend.Each(fn)
}

// Owner returns the owner of a live handle.
func (t *Table) Owner(handle Handle) (Owner, bool) {
	return t.backend.Owner(handle)
}

// Remove drops a reference and returns (value, true) if found.
func (t *Table) Remove(handle Handle) (any, bool) {
	owner, _ := t.backend.Owner(handle)
	value, ok := t.backend.Drop(handle)
	if !ok {
		return nil, false
	}

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Handle: handle,
		Owner:  owner,
		Value:  value,
	})

	return value, true
}

// RemoveOwned drops every reference held by owner and returns how many were
// dropped.
func (t *Table) RemoveOwned(owner Owner) int {
	var handles []Handle
	t.backend.Each(func(h Handle, o Owner, _ any) bool {
		if o == owner {
			handles = append(handles, h)
		}
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
	return len(handles)
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Len returns the number of live references.
func (t *Table) Len() int {
	return t.backend.Len()
}

// CountOwned returns the number of live references held by owner.
func (t *Table) CountOwned(owner Owner) int {
	n := 0
	t.backend.Each(func(_ Handle, o Owner, _ any) bool {
		if o == owner {
			n++
		}
		return true
	})
	return n
}

// Clear drops all references.
func (t *Table) Clear() {
	var handles []Handle
	t.backend.Each(func(h Handle, _ Owner, _ any) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close stops accepting inserts, then drops every live reference with the
// usual Dropper and observer notifications.
func (t *Table) Close() error {
	t.closeMu.Lock()
	if t.closed {
		t.closeMu.Unlock()
		return nil
	}
	t.closed = true
	t.closeMu.Unlock()

	t.Clear()
	return t.backend.Close()
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
