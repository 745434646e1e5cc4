package tui

import (
	"strconv"

	tea "charm.land/bubbletea/v2"

	"tasnim.dev/cloudspend/internal/spend"
	"tasnim.dev/cloudspend/internal/tui/theme"
	"tasnim.dev/cloudspend/internal/utils"
)

// segmentTarget picks the segment for kind: the active filter when set,
// otherwise the selected row's provider or team.
func (m Model) segmentTarget(kind spend.SegmentKind) string {
	c := m.state.Criteria()
	if kind == spend.SegmentTeam && c.Team != "" {
		return c.Team
	}
	if kind == spend.SegmentProvider && c.Cloud != "" {
		return c.Cloud
	}
	if r, ok := m.selected(); ok {
		return spend.SegmentName(r, kind)
	}
	return ""
}

func (m Model) openSegment(kind spend.SegmentKind) (tea.Model, tea.Cmd) {
	name := m.segmentTarget(kind)
	if name == "" {
		cmd := m.setStatus("Nothing selected for a " + string(kind) + " segment")
		return m, cmd
	}
	m.segment = spend.Segment(m.derived.Filtered, kind, name)
	m.overlay = overlaySegment
	return m, nil
}

func segmentFilterKey(kind spend.SegmentKind) spend.FilterKey {
	if kind == spend.SegmentTeam {
		return spend.FilterTeam
	}
	return spend.FilterCloud
}

func (m Model) updateSegment(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter":
		m.overlay = overlayNone
	case "x":
		m.state.SetFilter(segmentFilterKey(m.segment.Kind), "")
		m.derive()
		m.overlay = overlayNone
		cmd := m.setStatus("Cleared " + string(m.segment.Kind) + " filter")
		return m, cmd
	case "?":
		m.overlay = overlayHelp
	}
	return m, nil
}

func (m Model) renderSegment() string {
	s := m.segment

	d := utils.NewDetailBuilder(16, titleStyle)
	d.SetWidth(m.width - 12)
	if s.Kind == spend.SegmentProvider {
		d.WriteString(theme.RenderProvider(s.Name) + "  ")
	}
	d.WriteString(titleStyle.Render(s.Title) + "\n")
	d.Paragraph(s.Description)
	d.Blank()
	d.Row("Total spend", utils.GroupedCurrency(s.TotalSpend, ""))
	d.Row("Share", utils.Percent(s.PercentOfTotal))
	d.Row("Records", strconv.Itoa(s.Records))
	d.Row("Teams", strconv.Itoa(s.TeamsCount))
	d.Row("Services", strconv.Itoa(s.ServicesCount))
	d.Blank()

	bar := m.bar
	bar.SetWidth(max(m.width-16, 10))
	d.WriteString(bar.ViewAs(s.PercentOfTotal/100) + "\n")

	body := cardStyle.Render(d.String())
	if m.status != "" {
		body += "\n" + statusStyle.Render(m.status)
	}
	return dashboardStyle.Render(body + "\n" + RenderKeyHints(hintsSegment, m.width-4))
}
