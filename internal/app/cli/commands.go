package cli

import (
	"github.com/spf13/cobra"
)

// CommandType represents the type of CLI command
type CommandType int

// Command type values
const (
	CommandWatch CommandType = iota
	CommandRoute
	CommandConfig
	CommandVersion
	CommandHelp
)

// Options contains the parsed command-line arguments
type Options struct {
	Type    CommandType
	Kind    string
	Types   []string
	Program string
	Client  string
	UI      bool
	Input   string
}

// rootFlags holds flag values for the root command
type rootFlags struct {
	version bool
}

// Parse parses command-line args and returns a Options struct
func Parse(args []string) (*Options, error) {
	result := &Options{
		Type:  CommandWatch,
		Input: stdinInput,
	}

	var flags rootFlags

	root := buildRootCommand(result, &flags)
	root.AddCommand(
		buildWatchCommand(result),
		buildRouteCommand(result),
		buildConfigCommand(result),
		buildVersionCommand(result),
	)

	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return nil, err
	}

	if flags.version {
		result.Type = CommandVersion
	}

	return result, nil
}

// buildRootCommand creates the root cobra command; without a subcommand it watches everything
func buildRootCommand(result *Options, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fleetsync",
		Short: "Realtime update distribution for the fleet dashboard",
		Long: `Fleetsync keeps one websocket per identity to the fleet realtime server,
fans pushed events out to subscribers and invalidates the cached queries they affect.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandWatch
		},
	}

	cmd.PersistentFlags().BoolVar(&result.UI, "ui", false, "Render events in the live view")
	cmd.Flags().BoolVarP(&flags.version, "version", "v", false, "Show version information")

	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		result.Type = CommandHelp
	})

	return cmd
}

// buildWatchCommand creates the watch subcommand
func buildWatchCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"w"},
		Short:   "Subscribe to realtime events and print them as they arrive",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandWatch
		},
	}

	cmd.Flags().StringVarP(&result.Kind, "kind", "k", "", "Event kind: trips, drivers, clients, system or all")
	cmd.Flags().StringSliceVarP(&result.Types, "types", "t", nil, "Event type glob patterns, e.g. trip_*")
	cmd.Flags().StringVar(&result.Program, "program", "", "Only events targeted at this program id")
	cmd.Flags().StringVar(&result.Client, "client", "", "Only events targeted at this corporate client id")

	return cmd
}

// buildRouteCommand creates the route subcommand
func buildRouteCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "route [file|-]",
		Aliases: []string{"r"},
		Short:   "Print the cache keys one envelope would invalidate",
		Args:    cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandRoute
			if len(args) > 0 {
				result.Input = args[0]
			}
		},
	}

	return cmd
}

// buildConfigCommand creates the config subcommand
func buildConfigCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandConfig
		},
	}

	return cmd
}

// buildVersionCommand creates the version subcommand
func buildVersionCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandVersion
		},
	}

	return cmd
}
