package tracker

import (
	"sort"
	"sync"

	"github.com/fetrias/techtrack/internal/tech"
)

// EventKind identifies a committed mutation.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
	EventCleared EventKind = "cleared"
	EventLoaded  EventKind = "loaded"
)

// Event is delivered to observers after a mutation has been persisted.
type Event struct {
	Kind EventKind
	IDs  []tech.ID
}

type observers struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(Event)
}

func (o *observers) add(fn func(Event)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func(Event))
	}
	id := o.nextID
	o.nextID++
	o.fns[id] = fn

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.fns, id)
	}
}

func (o *observers) notify(ev Event) {
	o.mu.Lock()
	ids := make([]int, 0, len(o.fns))
	for id := range o.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, o.fns[id])
	}
	o.mu.Unlock()

	// Called outside the lock so observers may call back into the repository.
	for _, fn := range fns {
		fn(ev)
	}
}
