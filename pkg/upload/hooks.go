package upload

import (
	"context"
	"fmt"
	"sync"
)

// Event names a pipeline stage where hooks run.
type Event int

const (
	BeforeValidation Event = iota + 1
	AfterValidation
	BeforeSave
	AfterSave
)

var eventNames = map[Event]string{
	BeforeValidation: "before_validation",
	AfterValidation:  "after_validation",
	BeforeSave:       "before_save",
	AfterSave:        "after_save",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Valid reports whether e is one of the known hook points.
func (e Event) Valid() bool {
	_, ok := eventNames[e]
	return ok
}

// ParseEvent maps a snake_case event name to its Event.
func ParseEvent(name string) (Event, error) {
	for e, n := range eventNames {
		if n == name {
			return e, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidEvent, name)
}

// Hook inspects or mutates an in-flight file. Every returned FileError is
// appended to the file, and the file's validity is recomputed right after
// the hook returns.
type Hook func(ctx context.Context, f *File) []FileError

// Hooks is an ordered registry of hooks per event.
// It is safe for concurrent use; files only read from it.
type Hooks struct {
	mu       sync.RWMutex
	handlers map[Event][]Hook
}

// NewHooks returns an empty registry.
func NewHooks() *Hooks {
	return &Hooks{handlers: make(map[Event][]Hook)}
}

// Register appends h to the handlers of event.
// Unknown events and nil hooks are rejected.
func (h *Hooks) Register(event Event, hook Hook) error {
	if !event.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidEvent, event)
	}
	if hook == nil {
		return fmt.Errorf("%w: event %s", ErrNilHook, event)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handlers == nil {
		h.handlers = make(map[Event][]Hook)
	}
	h.handlers[event] = append(h.handlers[event], hook)
	return nil
}

// RegisterNamed is Register keyed by the event's snake_case name.
func (h *Hooks) RegisterNamed(name string, hook Hook) error {
	event, err := ParseEvent(name)
	if err != nil {
		return err
	}
	return h.Register(event, hook)
}

// Len returns the number of hooks registered for event.
func (h *Hooks) Len(event Event) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers[event])
}

// snapshot copies the handler list so hooks may register more hooks
// without deadlocking the running pipeline.
func (h *Hooks) snapshot(event Event) []Hook {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Hook(nil), h.handlers[event]...)
}
