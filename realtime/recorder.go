package realtime

import "sync"

// Event is one emit captured by a Recorder.
type Event struct {
	Room    string
	Name    string
	Payload any
}

// Recorder is a Broadcaster that keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(event string, payload any) {
	r.EmitToRoom("", event, payload)
}

func (r *Recorder) EmitToRoom(room, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Room: room, Name: event, Payload: payload})
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Named returns the recorded events called name, oldest first.
func (r *Recorder) Named(name string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
