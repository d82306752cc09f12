package platform

import "sync"

// AttributeObserver receives document attribute mutations.
type AttributeObserver func(name, value string)

// Document is the rendering surface root: a mutable attribute map whose
// changes are observable. A nil *Document models the absence of a rendering
// surface (e.g. server-side evaluation before first paint).
type Document struct {
	mu        sync.Mutex
	attrs     map[string]string
	observers map[int]AttributeObserver
	nextID    int
}

// NewDocument creates an empty document root.
func NewDocument() *Document {
	return &Document{
		attrs:     make(map[string]string),
		observers: make(map[int]AttributeObserver),
	}
}

// GetAttribute returns the attribute value, or "" if unset.
func (d *Document) GetAttribute(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attrs[name]
}

// SetAttribute sets an attribute and notifies observers. Setting an attribute
// to its current value is a no-op; observers fire once per actual change.
func (d *Document) SetAttribute(name, value string) {
	d.mu.Lock()
	if d.attrs[name] == value {
		d.mu.Unlock()
		return
	}
	d.attrs[name] = value
	observers := make([]AttributeObserver, 0, len(d.observers))
	for _, fn := range d.observers {
		observers = append(observers, fn)
	}
	d.mu.Unlock()

	// Notify outside the lock so observers may read or write attributes.
	for _, fn := range observers {
		fn(name, value)
	}
}

// Observe registers an attribute observer and returns its disconnect func.
func (d *Document) Observe(fn AttributeObserver) func() {
	d.mu.Lock()
	idx := d.nextID
	d.nextID++
	d.observers[idx] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.observers, idx)
		d.mu.Unlock()
	}
}
