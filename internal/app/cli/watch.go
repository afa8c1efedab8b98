package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"fleetsync/internal/app/connection"
	"fleetsync/internal/app/errors"
	"fleetsync/internal/app/facade"
	"fleetsync/internal/app/protocol"
	"fleetsync/internal/app/router"
	"fleetsync/internal/app/ui"
)

// sink receives what a watch subscription observes
type sink interface {
	Event(env protocol.Envelope)
	Status(state connection.State)
	Error(err error)
}

// uiSink forwards observations to the live view
type uiSink struct {
	sender *ui.Sender
}

func (s uiSink) Event(env protocol.Envelope) {
	s.sender.Send(ui.EventMsg{Envelope: env, Invalidated: planKeys(router.Keys(env))})
}

func (s uiSink) Status(state connection.State) {
	s.sender.Send(ui.StatusMsg(state))
}

func (s uiSink) Error(err error) {
	s.sender.Send(ui.ErrorMsg{Err: err})
}

// handleWatch mounts a subscription and streams it until ctx is done or the live view quits.
// Every envelope is routed to the cache regardless of the subscription filters.
func (c *cli) handleWatch(ctx context.Context, opts *Options) error {
	kind, err := facade.ParseKind(opts.Kind)
	if err != nil {
		return err
	}

	var (
		out     sink
		program *tea.Program
	)

	if opts.UI {
		program = c.ui(ctx, watchTitle(kind, opts, c.identity.ID))
		out = uiSink{sender: c.sender}
	} else {
		printer := NewPrinter(c.out, c.cfg.Logging.Format)
		printer.Banner(c.bannerFields(kind, opts))
		out = printer
	}

	c.registry.Subscribe(router.SubscriberID, c.router.Callbacks(ctx))
	defer c.registry.Unsubscribe(router.SubscriberID)

	f := c.factory()

	sub, err := facade.Subscribe(f, kind, facade.Options{
		Types: opts.Types,
		Target: protocol.Target{
			ProgramID:         opts.Program,
			CorporateClientID: opts.Client,
		},
	}, out.Event)
	if err != nil {
		return err
	}
	defer sub.Close()

	f.OnStatus(out.Status)
	f.OnError(c.reportError(out))

	err = f.Mount(ctx, c.identity)
	defer f.Unmount()

	if err != nil {
		if !errors.Is(err, errors.ErrCredentialUnavailable) || c.cfg.Auth.TokenFile == "" {
			return err
		}

		c.log.Warn().Err(err).Msgf("Waiting for a token in '%s'", c.cfg.Auth.TokenFile)
	}

	if err := c.watcher.Start(ctx, func() { c.bootstrapper.Reauthenticate(ctx) }); err != nil {
		c.log.Warn().Err(err).Msg("Token file changes will not be picked up")
	}
	defer c.watcher.Close()

	c.log.Info().Msgf("Watching %s as '%s' (subscriber %s)", kind, c.identity.ID, f.ID())

	if program == nil {
		<-ctx.Done()
		return nil
	}

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return err
	}

	return nil
}

// reportError shows persistent failures; reconnect churn only reaches the debug log
func (c *cli) reportError(out sink) func(error) {
	return func(err error) {
		if !escalated(err) {
			c.log.Debug().Err(err).Msg("Connection error, retry pending")
			return
		}

		out.Error(err)
	}
}

// escalated reports whether err needs the user: the retry ceiling or a missing credential
func escalated(err error) bool {
	return errors.Is(err, errors.ErrMaxRetriesExceeded) || errors.Is(err, errors.ErrCredentialUnavailable)
}

func (c *cli) bannerFields(kind facade.Kind, opts *Options) [][2]string {
	fields := [][2]string{
		{"identity", fmt.Sprintf("%s (%s)", c.identity.ID, c.identity.Role)},
		{"kind", string(kind)},
	}

	if len(opts.Types) > 0 {
		fields = append(fields, [2]string{"types", strings.Join(opts.Types, ", ")})
	}

	if opts.Program != "" {
		fields = append(fields, [2]string{"program", opts.Program})
	}

	if opts.Client != "" {
		fields = append(fields, [2]string{"client", opts.Client})
	}

	return fields
}

func watchTitle(kind facade.Kind, opts *Options, identity string) string {
	parts := []string{string(kind)}
	if len(opts.Types) > 0 {
		parts = append(parts, strings.Join(opts.Types, ","))
	}

	return strings.Join(parts, " ") + " · " + identity
}
