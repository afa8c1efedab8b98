package protocol

import (
	"encoding/json"
	"fmt"

	"fleetsync/internal/app/errors"
)

// EventType represents the kind of a pushed event
type EventType string

const (
	// TripUpdate is pushed when an existing trip changes
	TripUpdate EventType = "trip_update"
	// TripCreated is pushed when a trip is booked
	TripCreated EventType = "trip_created"
	// DriverUpdate is pushed when a driver record changes
	DriverUpdate EventType = "driver_update"
	// ClientUpdate is pushed when a client record changes
	ClientUpdate EventType = "client_update"
	// SystemUpdate is pushed for rare global state changes
	SystemUpdate EventType = "system_update"
	// Connection is the server handshake notice
	Connection EventType = "connection"
)

var knownTypes = map[EventType]bool{
	TripUpdate:   true,
	TripCreated:  true,
	DriverUpdate: true,
	ClientUpdate: true,
	SystemUpdate: true,
	Connection:   true,
}

// IsKnown reports whether the type belongs to the closed set this client understands
func IsKnown(t EventType) bool {
	return knownTypes[t]
}

// Target is the optional addressing hint the server may attach
type Target struct {
	UserID            string `json:"userId,omitempty"`
	Role              string `json:"role,omitempty"`
	ProgramID         string `json:"programId,omitempty"`
	CorporateClientID string `json:"corporateClientId,omitempty"`
}

// Envelope is the wire format of one pushed event
type Envelope struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Target    *Target         `json:"target,omitempty"`
}

// Scope holds the tenant scoping hints carried in event data
type Scope struct {
	ProgramID         string `json:"programId"`
	CorporateClientID string `json:"corporateClientId"`
}

// Decode parses one inbound frame
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", errors.ErrMalformedFrame, err)
	}

	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: %w", errors.ErrMalformedFrame, errors.ErrMissingEventType)
	}

	return env, nil
}

// Scope extracts scoping hints from data, ignoring anything that is not an object.
// Each hint is read on its own so one unusable field does not hide the other.
func (e Envelope) Scope() Scope {
	if len(e.Data) == 0 {
		return Scope{}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(e.Data, &fields); err != nil {
		return Scope{}
	}

	return Scope{
		ProgramID:         hint(fields["programId"]),
		CorporateClientID: hint(fields["corporateClientId"]),
	}
}

// hint renders a JSON string or number as an id; any other value yields ""
func hint(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return ""
}

// IsEmpty reports whether no scoping hint is present
func (s Scope) IsEmpty() bool {
	return s.ProgramID == "" && s.CorporateClientID == ""
}

// Matches reports whether an envelope addressed to t is relevant for filter.
// Empty fields on either side are wildcards.
func (t *Target) Matches(filter Target) bool {
	if t == nil {
		return true
	}

	return matchField(t.UserID, filter.UserID) &&
		matchField(t.Role, filter.Role) &&
		matchField(t.ProgramID, filter.ProgramID) &&
		matchField(t.CorporateClientID, filter.CorporateClientID)
}

func matchField(target, filter string) bool {
	return target == "" || filter == "" || target == filter
}
