package tui

import (
	"charm.land/lipgloss/v2"

	"tasnim.dev/cloudspend/internal/tui/theme"
)

var (
	// Dashboard styles composed from the shared theme
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary)

	headerStyle = theme.HeaderStyle

	metricLabelStyle = theme.MutedStyle

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(theme.Success)

	unattributedValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(theme.Warning)

	profileStyle = lipgloss.NewStyle().
			Foreground(theme.Secondary)

	helpStyle = theme.HelpStyle

	errorStyle = theme.ErrorStyle

	filterLabelStyle  = theme.FilterStyle
	filterActiveStyle = theme.ActiveFilterStyle

	statusStyle = theme.CopiedStyle

	cardStyle = theme.DashboardBoxStyle

	dashboardStyle = theme.DashboardStyle
)
