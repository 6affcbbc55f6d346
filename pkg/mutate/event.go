package mutate

// EventKind identifies the kind of change an [Event] reports.
type EventKind int

const (
	NodeAdded EventKind = iota + 1
	NodeUpdated
	NodeRemoved
	LinkAdded
	LinkRemoved
	ValidationFailed
)

var eventKindNames = map[EventKind]string{
	NodeAdded:        "node-added",
	NodeUpdated:      "node-updated",
	NodeRemoved:      "node-removed",
	LinkAdded:        "link-added",
	LinkRemoved:      "link-removed",
	ValidationFailed: "validation-failed",
}

func (k EventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Event describes one elementary change. For link events NodeID is the child
// and ParentID the parent. Err is set for ValidationFailed only.
type Event struct {
	Kind     EventKind
	NodeID   string
	ParentID string
	Err      error
}

// Observer receives events from an [Engine].
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to the [Observer] interface.
type ObserverFunc func(Event)

// OnEvent calls f.
func (f ObserverFunc) OnEvent(e Event) { f(e) }

// Recorder is an [Observer] that keeps every event it receives.
type Recorder struct {
	Events []Event
}

// OnEvent appends e.
func (r *Recorder) OnEvent(e Event) { r.Events = append(r.Events, e) }

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []EventKind {
	out := make([]EventKind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() { r.Events = nil }
