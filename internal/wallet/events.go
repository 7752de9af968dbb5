package wallet

import "sync"

// Listeners is an embeddable event fan-out for Provider implementations.
type Listeners struct {
	mu       sync.Mutex
	next     ListenerID
	handlers map[ListenerID]listener
}

type listener struct {
	event Event
	h     Handler
}

// On registers h for event.
func (l *Listeners) On(event Event, h Handler) ListenerID {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handlers == nil {
		l.handlers = make(map[ListenerID]listener)
	}
	l.next++
	l.handlers[l.next] = listener{event: event, h: h}
	return l.next
}

// RemoveListener unregisters id. Unknown ids are ignored.
func (l *Listeners) RemoveListener(id ListenerID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.handlers, id)
}

// Emit calls every handler registered for event outside the lock.
func (l *Listeners) Emit(event Event) {
	l.mu.Lock()
	var hs []Handler
	for _, ln := range l.handlers {
		if ln.event == event {
			hs = append(hs, ln.h)
		}
	}
	l.mu.Unlock()

	for _, h := range hs {
		h(event)
	}
}
