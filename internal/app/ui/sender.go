package ui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"fleetsync/internal/app/connection"
	"fleetsync/internal/app/protocol"
)

// EventMsg is a received envelope together with the cache keys it invalidated
type EventMsg struct {
	Envelope    protocol.Envelope
	Invalidated []string
	Received    time.Time
}

// StatusMsg reports a change of the mirrored connection state
type StatusMsg connection.State

// ErrorMsg reports a connection error
type ErrorMsg struct {
	Err error
}

// Sender holds a function to send messages to Bubble Tea
type Sender struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// NewSender creates a new Sender
func NewSender() *Sender {
	return &Sender{}
}

// Set sets the send function
func (s *Sender) Set(send func(tea.Msg)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.send = send
}

// Send sends a message if the send function is set
func (s *Sender) Send(msg tea.Msg) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.send != nil {
		s.send(msg)
	}
}
