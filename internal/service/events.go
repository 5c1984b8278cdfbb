package service

import (
	"time"

	"github.com/FocuswithJustin/JuniperSearch/core/search"
)

// EventType names an index lifecycle event.
type EventType string

const (
	EventIndexBuilding   EventType = "index_building"
	EventIndexRebuilding EventType = "index_rebuilding"
	EventIndexBuilt      EventType = "index_built"
	EventIndexFailed     EventType = "index_failed"
	EventIndexCleared    EventType = "index_cleared"
)

// Event is delivered to observers after each lifecycle change.
type Event struct {
	Type  EventType     `json:"type"`
	Stats *search.Stats `json:"stats,omitempty"`
	Error string        `json:"error,omitempty"`
	Time  time.Time     `json:"time"`
}

// Observer receives events synchronously; it must not block.
type Observer func(Event)

// Subscribe registers fn and returns a function that removes it.
func (s *Service) Subscribe(fn Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Service) emit(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	s.obsMu.RLock()
	fns := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
