package setswapper

import (
	"github.com/jeandeaual/mtga-setswapper/log"
	"github.com/jeandeaual/mtga-setswapper/plan"
)

// EventKind is the type of a pipeline event.
type EventKind int

const (
	// EventRunStarted is sent once before the first entry.
	EventRunStarted EventKind = iota
	// EventEntryStarted is sent when an entry starts being processed.
	EventEntryStarted
	// EventBackedUp is sent when a pristine copy of a container is made.
	EventBackedUp
	// EventPatched is sent when an entry was applied.
	EventPatched
	// EventEntrySkipped is sent when an entry can't be applied because a
	// card, container or record couldn't be found.
	EventEntrySkipped
	// EventEntryFailed is sent when an entry failed with an error.
	EventEntryFailed
	// EventRestored is sent for every container put back from the backups.
	EventRestored
	// EventRunFinished is sent once at the end of a run.
	EventRunFinished
)

var eventKindNames = map[EventKind]string{
	EventRunStarted:   "run started",
	EventEntryStarted: "entry started",
	EventBackedUp:     "backed up",
	EventPatched:      "patched",
	EventEntrySkipped: "entry skipped",
	EventEntryFailed:  "entry failed",
	EventRestored:     "restored",
	EventRunFinished:  "run finished",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event reports the progress of a run.
type Event struct {
	Kind EventKind
	// Index of the entry in the plan, -1 for run-level events.
	Index int
	Entry plan.Entry
	// Path of the container concerned, if any.
	Path    string
	Message string
	Err     error
}

// Observer receives the events of a run. It is called from the goroutine
// running the pipeline.
type Observer func(Event)

// LogObserver writes the events to the logger.
func LogObserver(e Event) {
	fields := []interface{}{"event", e.Kind.String()}
	if e.Index >= 0 {
		fields = append(fields, "entry", e.Entry.String())
	}
	if len(e.Path) > 0 {
		fields = append(fields, "path", e.Path)
	}

	switch e.Kind {
	case EventEntryFailed:
		log.Errorw(e.Message, append(fields, "error", e.Err)...)
	case EventEntrySkipped:
		if e.Err != nil {
			fields = append(fields, "reason", e.Err)
		}
		log.Warnw(e.Message, fields...)
	case EventEntryStarted, EventBackedUp, EventRestored:
		log.Debugw(e.Message, fields...)
	default:
		log.Infow(e.Message, fields...)
	}
}
