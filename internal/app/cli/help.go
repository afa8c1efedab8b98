package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// renderUsage renders the command overview printed for help
func renderUsage() string {
	usageSection := sectionHeader.Render("Usage:")
	usage := lipgloss.JoinVertical(
		lipgloss.Left,
		bodyMedium.Render("  "+commandName.Render("fleetsync watch [flags]")+"         Print realtime events as they arrive"),
		bodyMedium.Render("  "+commandName.Render("fleetsync route [file|-]")+"        Show what one envelope invalidates"),
		bodyMedium.Render("  "+commandName.Render("fleetsync config")+"                Print the effective configuration"),
		bodyMedium.Render("  "+commandName.Render("fleetsync version")+"               Show version"),
	)

	flagsSection := sectionHeader.Render("Watch flags:")
	flags := lipgloss.JoinVertical(
		lipgloss.Left,
		bodyMedium.Render("  "+commandName.Render("-k, --kind")+"      trips, drivers, clients, system or all"),
		bodyMedium.Render("  "+commandName.Render("-t, --types")+"     comma separated type globs"),
		bodyMedium.Render("  "+commandName.Render("--program")+"       only events targeted at a program"),
		bodyMedium.Render("  "+commandName.Render("--client")+"        only events targeted at a corporate client"),
		bodyMedium.Render("  "+commandName.Render("--ui")+"            render the live view"),
	)

	examplesSection := sectionHeader.Render("Examples:")
	examples := lipgloss.JoinVertical(
		lipgloss.Left,
		bodyMedium.Render("  "+exampleCode.Render("fleetsync watch --kind trips")+"       Trip events only"),
		bodyMedium.Render("  "+exampleCode.Render("fleetsync watch -t 'driver_*' --ui")+" Driver events in the live view"),
		bodyMedium.Render("  "+exampleCode.Render("echo '{...}' | fleetsync route")+"     Dry run routing of one envelope"),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		RenderTitle(),
		usageSection,
		usage,
		flagsSection,
		flags,
		examplesSection,
		examples,
	) + "\n"
}
