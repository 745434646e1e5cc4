package theme

import (
	"image/color"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/table"
	"charm.land/lipgloss/v2"
)

// Colors
var (
	Primary   = lipgloss.Color("#33A8FF")
	Secondary = lipgloss.Color("#163047")
	Muted     = lipgloss.Color("#6B7280")
	Success   = lipgloss.Color("#10B981")
	Warning   = lipgloss.Color("#F59E0B")
	Error     = lipgloss.Color("#EF4444")

	AWSOrange = lipgloss.Color("#FF9900")
	GCPBlue   = lipgloss.Color("#4285F4")
)

// Shared styles
var (
	HeaderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(Muted).
			Padding(0, 1)

	DashboardStyle = lipgloss.NewStyle().
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(1, 0, 0, 0)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	FilterStyle = lipgloss.NewStyle().
			Foreground(Primary)

	ActiveFilterStyle = lipgloss.NewStyle().
				Foreground(Primary).
				Bold(true)

	CopiedStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	HelpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 3)

	HelpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1)

	HelpKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary).
			Width(12)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D1D5DB"))

	DashboardBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Primary).
				Padding(0, 1)

	DashboardTitleStyle = lipgloss.NewStyle().
				Bold(true)

	LoadingStyle = lipgloss.NewStyle().
			Foreground(Muted).
			PaddingLeft(2)
)

// ProviderColor maps a provider to its brand color.
func ProviderColor(provider string) color.Color {
	p := strings.ToUpper(provider)
	switch {
	case strings.Contains(p, "AWS"):
		return AWSOrange
	case strings.Contains(p, "GCP"):
		return GCPBlue
	default:
		return Muted
	}
}

// RenderProvider renders a provider name with a colored bullet.
func RenderProvider(provider string) string {
	if provider == "" {
		return "N/A"
	}
	bullet := lipgloss.NewStyle().Foreground(ProviderColor(provider)).Render("●")
	return bullet + " " + provider
}

// EnvColor maps deployment environments to theme colors.
func EnvColor(env string) color.Color {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return Error
	case "staging", "stage":
		return Warning
	case "dev", "development", "test":
		return Success
	default:
		return Muted
	}
}

// RenderEnv renders an environment name in its color, "N/A" when empty.
func RenderEnv(env string) string {
	if strings.TrimSpace(env) == "" {
		return MutedStyle.Render("N/A")
	}
	return lipgloss.NewStyle().Foreground(EnvColor(env)).Render(env)
}

// DefaultTableStyles returns styled table styles using theme colors.
func DefaultTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Muted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	return s
}

// SpinnerStyle returns a spinner configured with the primary color.
func SpinnerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(Primary)
}

// NewSpinner returns a new spinner with the theme style.
func NewSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(SpinnerStyle()),
	)
}
