package tui

import (
	"strings"

	"charm.land/lipgloss/v2"

	"tasnim.dev/cloudspend/internal/tui/theme"
)

// hintContext determines which key hints the footer shows.
type hintContext int

const (
	hintsDashboard hintContext = iota
	hintsDateInput
	hintsDetail
	hintsSegment
)

type keyHint struct {
	key  string
	desc string
}

var helpBindings = []keyHint{
	{"c / t / e", "Cycle cloud, team, env filter"},
	{"d", "Edit date filter (Enter apply, Esc cancel)"},
	{"s", "Cycle sort"},
	{"R", "Reset filters and sort"},
	{"n / p", "Next / previous page"},
	{"z", "Cycle page size"},
	{"j/k", "Move selection"},
	{"Enter", "Row detail"},
	{"y", "Copy row as JSON"},
	{"P / T", "Provider / team segment"},
	{"x", "Clear segment filter (segment view)"},
	{"r", "Refresh data"},
	{"a", "Toggle auto-refresh"},
	{"?", "Toggle this help"},
	{"q", "Quit"},
}

func renderHelp(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.HelpTitleStyle.Render("Keybindings") + "\n")
	for _, binding := range helpBindings {
		b.WriteString(theme.HelpKeyStyle.Render(binding.key) + theme.HelpDescStyle.Render(binding.desc) + "\n")
	}

	box := theme.HelpBoxStyle.Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) hintContext() hintContext {
	if m.editingDate {
		return hintsDateInput
	}
	switch m.overlay {
	case overlayDetail:
		return hintsDetail
	case overlaySegment:
		return hintsSegment
	}
	return hintsDashboard
}

// RenderKeyHints renders a one-line footer of key hints, truncated to width.
func RenderKeyHints(ctx hintContext, width int) string {
	hints := hintsForContext(ctx)

	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	descStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	sep := descStyle.Render(" · ")

	var result string
	for i, h := range hints {
		plainLen := len(h.key) + 1 + len(h.desc)
		if i > 0 {
			plainLen += 3
		}
		if estimatePlainLen(result)+plainLen > width && i > 0 {
			break
		}
		if i > 0 {
			result += sep
		}
		result += keyStyle.Render(h.key) + " " + descStyle.Render(h.desc)
	}
	return result
}

// estimatePlainLen counts runes outside ANSI escape sequences.
func estimatePlainLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}

func hintsForContext(ctx hintContext) []keyHint {
	switch ctx {
	case hintsDateInput:
		return []keyHint{
			{"Enter", "apply"},
			{"Esc", "cancel"},
		}
	case hintsDetail:
		return []keyHint{
			{"j/k", "scroll"},
			{"y", "copy"},
			{"Esc", "back"},
		}
	case hintsSegment:
		return []keyHint{
			{"x", "clear filter"},
			{"Esc", "back"},
		}
	default:
		return []keyHint{
			{"c/t/e/d", "filter"},
			{"s", "sort"},
			{"n/p", "page"},
			{"Enter", "detail"},
			{"P/T", "segment"},
			{"y", "copy"},
			{"r", "refresh"},
			{"R", "reset"},
			{"?", "help"},
			{"q", "quit"},
		}
	}
}
