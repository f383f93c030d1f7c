package gridsearch

import "fmt"

// EventKind identifies an observation event.
type EventKind uint8

const (
	// EventCellChanged is emitted for every successful paint.
	EventCellChanged EventKind = iota
	// EventExplored is emitted when a cell other than the start is closed.
	EventExplored
	// EventPathCell is emitted for each intermediate cell of a found path,
	// walking from the goal back towards the start.
	EventPathCell
	// EventFinished carries the terminal Outcome.
	EventFinished
	// EventReset is emitted after Reset cleared the grid.
	EventReset
)

var eventKindNames = [...]string{
	EventCellChanged: "cell_changed",
	EventExplored:    "explored",
	EventPathCell:    "path_cell",
	EventFinished:    "finished",
	EventReset:       "reset",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("event(%d)", k)
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is a notification for the rendering collaborator.
type Event struct {
	Kind     EventKind `json:"kind"`
	Position Position  `json:"position"`
	// Role is set on EventCellChanged.
	Role Role `json:"role"`
	// Displaced is the old start/goal cell reset to Empty by this paint.
	Displaced *Position `json:"displaced,omitempty"`
	// Outcome is set on EventFinished.
	Outcome Outcome `json:"outcome,omitempty"`
}

// Observer receives events. Observe is called without any controller lock
// held, so it may call back into the controller, but it blocks the search
// while it runs.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }
