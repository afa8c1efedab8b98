package connection

import (
	"context"

	"github.com/looplab/fsm"

	"fleetsync/internal/config/logger"
)

// State is the lifecycle state of the shared connection
type State string

// Connection states
const (
	Disconnected State = "disconnected"
	Connecting   State = "connecting"
	Connected    State = "connected"
	Error        State = "error"
)

// FSM events
const (
	eventConnect = "connect"
	eventOpen    = "open"
	eventFail    = "fail"
	eventClose   = "close"
	eventReset   = "reset"
)

// newConnectionFSM creates the state machine guarding connection transitions
func newConnectionFSM(log logger.Logger) *fsm.FSM {
	return fsm.NewFSM(
		string(Disconnected),
		fsm.Events{
			{Name: eventConnect, Src: []string{string(Disconnected), string(Error)}, Dst: string(Connecting)},
			{Name: eventOpen, Src: []string{string(Connecting)}, Dst: string(Connected)},
			{Name: eventFail, Src: []string{string(Disconnected), string(Connecting), string(Connected), string(Error)}, Dst: string(Error)},
			{Name: eventClose, Src: []string{string(Connecting), string(Connected), string(Error)}, Dst: string(Disconnected)},
			{Name: eventReset, Src: []string{string(Connecting), string(Connected), string(Error)}, Dst: string(Disconnected)},
		},
		fsm.Callbacks{
			"after_event": func(ctx context.Context, e *fsm.Event) {
				log.Debug().Msgf("STATE %s → %s (trigger: %s)", e.Src, e.Dst, e.Event)
			},
		},
	)
}
