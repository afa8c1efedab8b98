//go:generate mockgen -source=cli.go -destination=cli_mock.go -package=cli
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"
	"go.yaml.in/yaml/v3"

	"fleetsync/internal/app/auth"
	"fleetsync/internal/app/errors"
	"fleetsync/internal/app/facade"
	"fleetsync/internal/app/protocol"
	"fleetsync/internal/app/registry"
	"fleetsync/internal/app/router"
	"fleetsync/internal/app/ui"
	"fleetsync/internal/config"
	"fleetsync/internal/config/logger"
)

const (
	stdinInput = "-"
	redacted   = "<redacted>"
)

// CLI defines the interface for cli operations
type CLI interface {
	Execute() (exitCode int, err error)
}

// Params contains dependencies for the cli
type Params struct {
	fx.In

	Config       *config.Config
	Identity     auth.Identity
	Factory      facade.Factory
	Bootstrapper facade.Bootstrapper
	Registry     registry.Registry
	Router       router.Router
	Watcher      auth.Watcher
	UI           ui.UI
	Sender       *ui.Sender
	Logger       logger.Logger
}

// cli represents the command-line interface for the application
type cli struct {
	cfg          *config.Config
	identity     auth.Identity
	factory      facade.Factory
	bootstrapper facade.Bootstrapper
	registry     registry.Registry
	router       router.Router
	watcher      auth.Watcher
	ui           ui.UI
	sender       *ui.Sender
	log          logger.Logger

	args   []string
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// NewCLI creates a new cli instance reading the process arguments
func NewCLI(p Params) CLI {
	return &cli{
		cfg:          p.Config,
		identity:     p.Identity,
		factory:      p.Factory,
		bootstrapper: p.Bootstrapper,
		registry:     p.Registry,
		router:       p.Router,
		watcher:      p.Watcher,
		ui:           p.UI,
		sender:       p.Sender,
		log:          p.Logger.WithComponent("CLI"),
		args:         os.Args[1:],
		in:           os.Stdin,
		out:          os.Stdout,
		errOut:       os.Stderr,
	}
}

// Execute parses the arguments, runs the command and returns the exit code
func (c *cli) Execute() (int, error) {
	opts, err := Parse(c.args)
	if err != nil {
		fmt.Fprintf(c.errOut, "%s %v\n", errorStyle.Render("Error:"), err)
		return 1, err
	}

	if err := c.run(opts); err != nil {
		c.log.Error().Err(err).Msg("Command failed")
		fmt.Fprintf(c.errOut, "%s %v\n", errorStyle.Render("Error:"), err)

		return 1, err
	}

	return 0, nil
}

func (c *cli) run(opts *Options) error {
	switch opts.Type {
	case CommandRoute:
		return c.handleRoute(opts.Input)
	case CommandConfig:
		return c.handleConfig()
	case CommandVersion:
		return c.handleVersion()
	case CommandHelp:
		return c.handleHelp()
	default:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return c.handleWatch(ctx, opts)
	}
}

// handleRoute prints the invalidation plan of one envelope without touching the cache
func (c *cli) handleRoute(input string) error {
	data, err := c.readInput(input)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToReadInput, err)
	}

	env, err := protocol.Decode(data)
	if err != nil {
		return err
	}

	c.log.Debug().Msgf("Routing %s from '%s'", env.Type, input)
	NewPrinter(c.out, c.cfg.Logging.Format).Plan(router.Keys(env))

	return nil
}

func (c *cli) readInput(input string) ([]byte, error) {
	if input == "" || input == stdinInput {
		return io.ReadAll(c.in)
	}

	return os.ReadFile(input)
}

// handleConfig prints the effective configuration with secrets redacted
func (c *cli) handleConfig() error {
	cfg := *c.cfg
	if cfg.Auth.Token != "" {
		cfg.Auth.Token = redacted
	}

	if cfg.Sentry.DSN != "" {
		cfg.Sentry.DSN = redacted
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	_, err = c.out.Write(data)

	return err
}

// handleVersion displays version information
func (c *cli) handleVersion() error {
	c.log.Debug().Msg("Displaying version information")
	fmt.Fprintln(c.out, RenderTitle())

	return nil
}

// handleHelp displays help information
func (c *cli) handleHelp() error {
	c.log.Debug().Msg("Displaying help information")
	fmt.Fprint(c.out, renderUsage())

	return nil
}
