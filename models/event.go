package models

// EventKind identifies a progress notification emitted during a walk.
type EventKind int

const (
	EventPageStart EventKind = iota
	EventItemsFound
	EventItemAdded
	EventItemError
	EventPageError
	EventRunComplete
)

func (k EventKind) String() string {
	switch k {
	case EventPageStart:
		return "page_start"
	case EventItemsFound:
		return "items_found"
	case EventItemAdded:
		return "item_added"
	case EventItemError:
		return "item_error"
	case EventPageError:
		return "page_error"
	case EventRunComplete:
		return "run_complete"
	default:
		return "unknown"
	}
}

// Event is one human-readable progress message. Record is set for
// EventItemAdded and Err for the error kinds.
type Event struct {
	Kind    EventKind
	Page    int
	URL     string
	Message string
	Err     error
	Record  *BookRecord
}

// EventSink receives events in emission order. Sinks are always called from
// the goroutine that invoked the walk.
type EventSink func(Event)
