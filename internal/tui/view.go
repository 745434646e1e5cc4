package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/guptarohit/asciigraph"
	"github.com/shopspring/decimal"

	"tasnim.dev/cloudspend/internal/spend"
	"tasnim.dev/cloudspend/internal/tui/theme"
	"tasnim.dev/cloudspend/internal/utils"
)

var errNoSource = errors.New("no data source configured")

const (
	// rows taken by everything around the table, chart excluded
	tableChrome = 22
	chartHeight = 8
	minChartRow = 40
	topTeams    = 5
)

func (m Model) View() tea.View {
	var content string
	switch m.overlay {
	case overlayHelp:
		content = renderHelp(m.width, m.height)
	case overlayDetail:
		content = m.renderDetail()
	case overlaySegment:
		content = m.renderSegment()
	default:
		content = m.renderDashboard()
	}

	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

func (m Model) renderDashboard() string {
	header := headerStyle.Render(m.renderHeader())

	var body string
	switch {
	case !m.loaded && m.err != nil:
		body = m.renderError()
	case !m.loaded:
		body = m.spinner.View() + " Loading spend data...\n"
	default:
		body = m.renderLoaded()
	}

	return dashboardStyle.Render(
		header + "\n\n" + body + "\n" + RenderKeyHints(m.hintContext(), m.width-4),
	)
}

func (m Model) renderHeader() string {
	header := titleStyle.Render("Cloud Spend")
	if m.profile != "" || m.accountID != "" {
		header += "  " + profileStyle.Render(fmt.Sprintf("Profile: %s | Account: %s",
			utils.OrDefault(m.profile, "default"), utils.OrDefault(m.accountID, "-")))
	}
	if len(m.sources) > 0 {
		header += "  " + metricLabelStyle.Render("Source: "+strings.Join(m.sources, ", "))
	}

	switch {
	case m.loading && m.loaded:
		header += "  " + m.spinner.View() + metricLabelStyle.Render(" refreshing")
	case !m.loadedAt.IsZero():
		header += "  " + metricLabelStyle.Render("Updated "+utils.TimeOrDash(m.loadedAt, utils.TimeOnly))
	}
	if m.autoRefresh {
		header += metricLabelStyle.Render(" (auto " + m.refreshInterval.String() + ")")
	}
	return header
}

func (m Model) renderError() string {
	return errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n" +
		helpStyle.Render("press r to retry • q to quit") + "\n"
}

func (m Model) renderLoaded() string {
	var b strings.Builder
	b.WriteString(m.renderCards() + "\n")
	b.WriteString(m.renderFilters() + "\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + " " +
			metricLabelStyle.Render("(press r to retry)") + "\n")
	}
	b.WriteString("\n" + m.renderBreakdown() + "\n")
	if m.height >= minChartRow {
		b.WriteString(m.buildChart())
	}

	if len(m.derived.Filtered) == 0 {
		if m.derived.Loaded == 0 {
			b.WriteString(metricLabelStyle.Render("No spend records loaded.") + "\n")
		} else {
			b.WriteString(metricLabelStyle.Render("No spend records match the current filters. Press R to reset.") + "\n")
		}
	} else {
		b.WriteString(m.table.View() + "\n")
	}
	b.WriteString(m.renderStatus())
	return b.String()
}

func card(label, value string, valueStyle lipgloss.Style) string {
	return cardStyle.Render(metricLabelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

func (m Model) renderCards() string {
	agg := m.derived.Aggregates
	cards := []string{
		card("Total spend", utils.GroupedCurrency(agg.TotalSpend, ""), metricValueStyle),
		card("Records", strconv.Itoa(agg.TotalRecords), metricValueStyle),
		card("Providers", strconv.Itoa(agg.ProvidersCount), metricValueStyle),
	}
	for _, p := range agg.ProviderTotals() {
		cards = append(cards, card(p.Name, utils.GroupedCurrency(p.Total, ""),
			lipgloss.NewStyle().Bold(true).Foreground(theme.ProviderColor(p.Name))))
	}
	if !agg.Unattributed.IsZero() {
		cards = append(cards, card("Unattributed", utils.GroupedCurrency(agg.Unattributed, ""), unattributedValueStyle))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func filterPart(key, label, value string) string {
	v := filterLabelStyle.Render("All")
	if value != "" {
		v = filterActiveStyle.Render(value)
	}
	return metricLabelStyle.Render("["+key+"] "+label+": ") + v
}

func (m Model) renderFilters() string {
	c := m.state.Criteria()
	parts := []string{
		filterPart("c", "cloud", c.Cloud),
		filterPart("t", "team", c.Team),
		filterPart("e", "env", c.Env),
	}
	if m.editingDate {
		parts = append(parts, metricLabelStyle.Render("[d] date: ")+m.dateInput.View())
	} else {
		parts = append(parts, filterPart("d", "date", c.Date))
	}
	parts = append(parts,
		metricLabelStyle.Render("[s] sort: ")+filterLabelStyle.Render(m.state.Sort().Label()),
		metricLabelStyle.Render("[z] rows: ")+filterLabelStyle.Render(strconv.Itoa(m.state.PageSize())),
	)

	line := strings.Join(parts, "  ")
	if m.dateErr != "" {
		line += "\n" + errorStyle.Render("Invalid date: "+m.dateErr)
	}
	return line
}

func (m Model) renderBreakdown() string {
	agg := m.derived.Aggregates
	width := max((m.width-8)/2, 30)

	teams := agg.TeamTotals()
	if len(teams) > topTeams {
		teams = teams[:topTeams]
	}

	providers := m.renderBars("By provider", agg.ProviderTotals(), agg.TotalSpend, width, true)
	byTeam := m.renderBars("Top teams", teams, agg.TotalSpend, width, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, providers, "    ", byTeam)
}

// renderBars draws one share-of-total bar per entry.
func (m Model) renderBars(title string, totals []spend.NamedTotal, total decimal.Decimal, width int, provider bool) string {
	const labelWidth = 10
	const amountWidth = 22

	bar := m.bar
	bar.SetWidth(max(width-labelWidth-amountWidth, 10))
	label := lipgloss.NewStyle().Width(labelWidth)

	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n")
	if len(totals) == 0 {
		b.WriteString(metricLabelStyle.Render("No data") + "\n")
		return b.String()
	}
	for _, t := range totals {
		share := 0.0
		if total.IsPositive() {
			share = t.Total.Div(total).InexactFloat64()
		}
		name := t.Name
		if provider {
			name = theme.RenderProvider(name)
		}
		fmt.Fprintf(&b, "%s%s %s %s\n",
			label.Render(name),
			bar.ViewAs(share),
			utils.GroupedCurrency(t.Total, ""),
			metricLabelStyle.Render(utils.Percent(share*100)),
		)
	}
	return b.String()
}

func (m Model) buildChart() string {
	daily := m.derived.Daily
	if len(daily) < 2 {
		return ""
	}

	values := make([]float64, len(daily))
	for i, d := range daily {
		values[i] = d.Spend.InexactFloat64()
	}

	chartWidth := max(m.width-16, 10)
	chart := asciigraph.Plot(values,
		asciigraph.Height(chartHeight-3),
		asciigraph.Width(chartWidth),
		asciigraph.Caption(fmt.Sprintf("Daily Spend %s to %s", daily[0].Date, daily[len(daily)-1].Date)),
		asciigraph.Precision(2),
	)
	return metricLabelStyle.Render(chart) + "\n\n"
}

func (m Model) renderStatus() string {
	page := m.derived.Page
	parts := []string{page.Showing()}
	if s := page.Status(); s != "" {
		parts = append(parts, s)
	}
	if len(m.derived.Filtered) < m.derived.Loaded {
		parts = append(parts, fmt.Sprintf("filtered from %d loaded", m.derived.Loaded))
	}

	line := metricLabelStyle.Render(strings.Join(parts, " · "))
	if m.status != "" {
		line += "  " + statusStyle.Render(m.status)
	}
	return line + "\n"
}

func columnsFor(width int) []table.Column {
	const (
		dateW     = 12
		providerW = 9
		teamW     = 10
		envW      = 9
		costW     = 14
		borders   = 12
	)
	serviceW := max(width-4-dateW-providerW-teamW-envW-costW-borders, 14)
	return []table.Column{
		{Title: "Date", Width: dateW},
		{Title: "Provider", Width: providerW},
		{Title: "Service", Width: serviceW},
		{Title: "Team", Width: teamW},
		{Title: "Env", Width: envW},
		{Title: "Cost (USD)", Width: costW},
	}
}

func buildRows(records []spend.Record) []table.Row {
	rows := make([]table.Row, len(records))
	for i, r := range records {
		rows[i] = table.Row{
			utils.OrDefault(r.Day(), "N/A"),
			utils.OrDefault(r.Provider(), "N/A"),
			utils.OrDefault(r.Service, "-"),
			utils.OrDefault(r.Team, "-"),
			utils.OrDefault(r.Env, "N/A"),
			utils.Currency(r.CostUSD, ""),
		}
	}
	return rows
}

func (m Model) resize() Model {
	m.table.SetColumns(columnsFor(m.width))
	m.table.SetWidth(m.width - 4) // dashboardStyle Padding(1,2)

	chrome := tableChrome
	if m.height >= minChartRow {
		chrome += chartHeight
	}
	tableHeight := min(max(m.height-chrome, 3), m.state.PageSize()+1)
	m.table.SetHeight(tableHeight)

	m.detail.SetWidth(max(m.width-8, 20))
	m.detail.SetHeight(max(m.height-8, 5))
	return m
}
