package registry

import (
	"fmt"
	"sort"
	"sync"

	"fleetsync/internal/app/protocol"
	"fleetsync/internal/config/logger"
)

// Kind identifies which callback a notification targets
type Kind string

const (
	KindMessage    Kind = "message"
	KindConnect    Kind = "connect"
	KindDisconnect Kind = "disconnect"
	KindError      Kind = "error"
)

// Callbacks is one consumer's interest in connection events; any field may be nil
type Callbacks struct {
	OnMessage    func(env protocol.Envelope)
	OnConnect    func()
	OnDisconnect func()
	OnError      func(err error)
}

// Notification is a single event fanned out to every subscriber
type Notification struct {
	Kind     Kind
	Envelope protocol.Envelope
	Err      error
}

// Message creates a message notification
func Message(env protocol.Envelope) Notification {
	return Notification{Kind: KindMessage, Envelope: env}
}

// Connected creates a connect notification
func Connected() Notification {
	return Notification{Kind: KindConnect}
}

// Disconnected creates a disconnect notification
func Disconnected() Notification {
	return Notification{Kind: KindDisconnect}
}

// Failed creates an error notification
func Failed(err error) Notification {
	return Notification{Kind: KindError, Err: err}
}

// Registry maps subscriber ids to callbacks and fans events out to all of them
type Registry interface {
	Subscribe(id string, callbacks Callbacks)
	Unsubscribe(id string)
	Notify(n Notification)
	Has(id string) bool
	Count() int
	Clear()
}

// entry represents a registered subscriber with its delivery position
type entry struct {
	id        string
	callbacks Callbacks
	order     int
}

// registry implements the Registry interface
type registry struct {
	mu          sync.RWMutex
	subscribers map[string]*entry
	nextOrder   int
	log         logger.Logger
}

// NewRegistry creates an empty subscriber registry
func NewRegistry(log logger.Logger) Registry {
	return &registry{
		subscribers: make(map[string]*entry),
		log:         log.WithComponent("REGISTRY"),
	}
}

// Subscribe registers callbacks under id, replacing any previous set in place
func (r *registry) Subscribe(id string, callbacks Callbacks) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.subscribers[id]; ok {
		existing.callbacks = callbacks
		return
	}

	r.subscribers[id] = &entry{
		id:        id,
		callbacks: callbacks,
		order:     r.nextOrder,
	}
	r.nextOrder++
}

// Unsubscribe removes id; unknown ids are ignored
func (r *registry) Unsubscribe(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.subscribers, id)
}

// Has reports whether id is registered
func (r *registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.subscribers[id]

	return ok
}

// Count returns the number of live subscribers
func (r *registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.subscribers)
}

// Clear drops every subscriber
func (r *registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subscribers = make(map[string]*entry)
}

// Notify invokes the matching callback of every subscriber in subscription order
func (r *registry) Notify(n Notification) {
	for _, item := range r.snapshot() {
		r.deliver(item, n)
	}
}

// snapshot copies subscribers so callbacks may subscribe or unsubscribe while being notified
func (r *registry) snapshot() []entry {
	r.mu.RLock()

	entries := make([]entry, 0, len(r.subscribers))
	for _, item := range r.subscribers {
		entries = append(entries, *item)
	}

	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].order < entries[j].order
	})

	return entries
}

// deliver calls one callback, containing any panic to this subscriber
func (r *registry) deliver(item entry, n Notification) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Err(fmt.Errorf("%v", rec)).Msgf("Subscriber '%s' failed handling %s", item.id, n.Kind)
		}
	}()

	cb := item.callbacks

	switch n.Kind {
	case KindMessage:
		if cb.OnMessage != nil {
			cb.OnMessage(n.Envelope)
		}
	case KindConnect:
		if cb.OnConnect != nil {
			cb.OnConnect()
		}
	case KindDisconnect:
		if cb.OnDisconnect != nil {
			cb.OnDisconnect()
		}
	case KindError:
		if cb.OnError != nil {
			cb.OnError(n.Err)
		}
	}
}
