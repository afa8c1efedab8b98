package facade

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"fleetsync/internal/app/errors"
	"fleetsync/internal/app/protocol"
)

// Kind names a family of event types a consumer is interested in
type Kind string

const (
	KindTrips   Kind = "trips"
	KindDrivers Kind = "drivers"
	KindClients Kind = "clients"
	KindSystem  Kind = "system"
	KindAll     Kind = "all"
)

var kindTypes = map[Kind][]protocol.EventType{
	KindTrips:   {protocol.TripUpdate, protocol.TripCreated},
	KindDrivers: {protocol.DriverUpdate},
	KindClients: {protocol.ClientUpdate},
	KindSystem:  {protocol.SystemUpdate},
}

// ParseKind validates a kind name; an empty name means all
func ParseKind(s string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(s)))
	if kind == "" {
		return KindAll, nil
	}

	if kind == KindAll {
		return kind, nil
	}

	if _, ok := kindTypes[kind]; !ok {
		return "", fmt.Errorf("%w: '%s'", errors.ErrUnknownKind, s)
	}

	return kind, nil
}

// Options narrow a subscription beyond its kind
type Options struct {
	// Types are glob patterns over the event type, e.g. trip_*
	Types []string
	// Target keeps only envelopes addressed to a matching target; empty fields match anything
	Target protocol.Target
}

// Subscription filters a facade's messages before they reach the consumer
type Subscription struct {
	facade  *Facade
	kind    Kind
	types   []glob.Glob
	target  protocol.Target
	handler func(protocol.Envelope)
}

// Subscribe installs a filtered message handler on f
func Subscribe(f *Facade, kind Kind, opts Options, handler func(protocol.Envelope)) (*Subscription, error) {
	s := &Subscription{
		facade:  f,
		kind:    kind,
		target:  opts.Target,
		handler: handler,
	}

	for _, pattern := range opts.Types {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: '%s': %w", errors.ErrInvalidTypeFilter, pattern, err)
		}

		s.types = append(s.types, g)
	}

	f.OnMessage(s.handle)

	return s, nil
}

// Matches reports whether env passes the kind, type pattern and target filters
func (s *Subscription) Matches(env protocol.Envelope) bool {
	if !s.matchesKind(env.Type) {
		return false
	}

	if len(s.types) > 0 && !s.matchesPattern(env.Type) {
		return false
	}

	return env.Target.Matches(s.target)
}

// Facade returns the underlying facade
func (s *Subscription) Facade() *Facade {
	return s.facade
}

// Close detaches the filter from the facade
func (s *Subscription) Close() {
	s.facade.OnMessage(nil)
}

func (s *Subscription) handle(env protocol.Envelope) {
	if s.Matches(env) {
		s.handler(env)
	}
}

func (s *Subscription) matchesKind(t protocol.EventType) bool {
	if s.kind == KindAll {
		return true
	}

	for _, candidate := range kindTypes[s.kind] {
		if candidate == t {
			return true
		}
	}

	return false
}

func (s *Subscription) matchesPattern(t protocol.EventType) bool {
	for _, g := range s.types {
		if g.Match(string(t)) {
			return true
		}
	}

	return false
}
