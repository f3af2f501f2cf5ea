package dom

// EventType names a browser event.
type EventType string

const (
	Click     EventType = "click"
	DragStart EventType = "dragstart"
	DragEnd   EventType = "dragend"
	DragEnter EventType = "dragenter"
	DragLeave EventType = "dragleave"
	DragOver  EventType = "dragover"
	Drop      EventType = "drop"
)

// Known reports whether t is an event type the board handles.
func (t EventType) Known() bool {
	switch t {
	case Click, DragStart, DragEnd, DragEnter, DragLeave, DragOver, Drop:
		return true
	}
	return false
}

// Listener handles an event during dispatch.
type Listener func(*Event)

// Event is a dispatched event. Target is the element the event was fired at;
// CurrentTarget is the element whose listener is running.
type Event struct {
	Type          EventType
	Target        *Element
	CurrentTarget *Element
	ClientY       float64

	defaultPrevented bool
	stopped          bool
}

// NewEvent creates an event of the given type aimed at target.
func NewEvent(t EventType, target *Element) *Event {
	return &Event{Type: t, Target: target}
}

// PreventDefault marks the event as handled, suppressing the platform default.
func (ev *Event) PreventDefault() { ev.defaultPrevented = true }

func (ev *Event) DefaultPrevented() bool { return ev.defaultPrevented }

// StopPropagation prevents the event from bubbling past the current element.
func (ev *Event) StopPropagation() { ev.stopped = true }

// AddEventListener registers fn for events of type t on e. Listeners on the
// same element run in registration order.
func (e *Element) AddEventListener(t EventType, fn Listener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]Listener)
	}
	e.listeners[t] = append(e.listeners[t], fn)
}

// Dispatch delivers ev to its target and then bubbles it up through the
// target's ancestors. It returns false when a listener called PreventDefault.
func Dispatch(ev *Event) bool {
	if ev.Target == nil {
		return true
	}
	for node := ev.Target; node != nil && !ev.stopped; node = node.parent {
		ls := node.listeners[ev.Type]
		if len(ls) == 0 {
			continue
		}
		ev.CurrentTarget = node
		// Copy so listeners registered during dispatch wait for the next event.
		for _, fn := range append([]Listener(nil), ls...) {
			fn(ev)
		}
	}
	ev.CurrentTarget = nil
	return !ev.defaultPrevented
}
