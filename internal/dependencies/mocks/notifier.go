package mocks

import (
	"sync"

	"github.com/mcoot/crimeguessr/internal/model"
	"github.com/mcoot/crimeguessr/internal/services/notify"
)

// RecordingNotifier captures every event sent to each connection
type RecordingNotifier struct {
	mu     sync.Mutex
	events map[model.ConnectionID][]model.Event
}

// Ensure RecordingNotifier implements Notifier
var _ notify.Notifier = (*RecordingNotifier)(nil)

// NewRecordingNotifier creates an empty RecordingNotifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{events: make(map[model.ConnectionID][]model.Event)}
}

// Notify records the event for the connection
func (n *RecordingNotifier) Notify(to model.ConnectionID, ev model.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[to] = append(n.events[to], ev)
}

// Events returns everything sent to the connection, oldest first
func (n *RecordingNotifier) Events(to model.ConnectionID) []model.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.Event, len(n.events[to]))
	copy(out, n.events[to])
	return out
}

// Types returns the event types sent to the connection, oldest first
func (n *RecordingNotifier) Types(to model.ConnectionID) []model.EventType {
	events := n.Events(to)
	types := make([]model.EventType, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

// OfType returns the events of one type sent to the connection
func (n *RecordingNotifier) OfType(to model.ConnectionID, t model.EventType) []model.Event {
	var out []model.Event
	for _, ev := range n.Events(to) {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// Last returns the most recent event sent to the connection
func (n *RecordingNotifier) Last(to model.ConnectionID) (model.Event, bool) {
	events := n.Events(to)
	if len(events) == 0 {
		return model.Event{}, false
	}
	return events[len(events)-1], true
}

// Reset forgets all recorded events
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = make(map[model.ConnectionID][]model.Event)
}
