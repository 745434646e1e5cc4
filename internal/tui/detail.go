package tui

import (
	"bytes"
	"encoding/json"
	"fmt"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"tasnim.dev/cloudspend/internal/spend"
	"tasnim.dev/cloudspend/internal/tui/theme"
	"tasnim.dev/cloudspend/internal/utils"
)

func newDetailViewport(width, height int) viewport.Model {
	vp := viewport.New(
		viewport.WithWidth(max(width-8, 20)),
		viewport.WithHeight(max(height-8, 5)),
	)
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.Style = lipgloss.NewStyle().Padding(0, 1)
	return vp
}

func (m *Model) openDetail(r spend.Record) {
	m.detailRecord = r
	m.overlay = overlayDetail
	m.detail = newDetailViewport(m.width, m.height)
	m.detail.SetContent(detailContent(r, m.width-12))
}

func (m Model) updateDetail(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q":
		m.overlay = overlayNone
		return m, nil
	case "?":
		m.overlay = overlayHelp
		return m, nil
	case "y":
		cmd := m.copyRecord(m.detailRecord)
		return m, cmd
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) renderDetail() string {
	r := m.detailRecord
	title := titleStyle.Render("Spend record") + "  " + metricLabelStyle.Render(r.Key())

	body := title + "\n\n" + m.detail.View()
	if m.status != "" {
		body += "\n" + statusStyle.Render(m.status)
	}
	return dashboardStyle.Render(body + "\n" + RenderKeyHints(hintsDetail, m.width-4))
}

// detailContent lists the normalized fields, a one-line explanation and the
// full source record as highlighted JSON.
func detailContent(r spend.Record, width int) string {
	d := utils.NewDetailBuilder(12, titleStyle)
	d.SetWidth(width)

	d.Section("Summary")
	d.Row("Date", r.Day())
	d.Row("Provider", r.Provider())
	d.Row("Service", r.Service)
	d.Row("Team", r.Team)
	d.Row("Env", r.Env)
	d.Row("Cost", utils.Currency(r.CostUSD, ""))
	if r.ID != "" {
		d.Row("ID", r.ID)
	}
	if explain := spend.Explain(r); explain != "" {
		d.Blank()
		d.Paragraph(explain)
	}

	d.Blank()
	d.Section("Fields")
	d.WriteString(recordJSON(r))
	return d.String()
}

func recordJSON(r spend.Record) string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return theme.ErrorStyle.Render(fmt.Sprintf("encoding record: %v", err))
	}
	return highlightJSON(string(data))
}

// highlightJSON applies terminal syntax highlighting, returning text
// unchanged when highlighting fails.
func highlightJSON(text string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Analyse(text)
	}
	if lexer == nil {
		return text
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return text
	}
	return buf.String()
}

func (m *Model) copyRecord(r spend.Record) tea.Cmd {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return m.setStatus("Copy failed: " + err.Error())
	}
	if err := m.copyFn(string(data)); err != nil {
		m.log.Warn("clipboard write failed", "error", err)
		return m.setStatus("Copy failed: " + err.Error())
	}
	return m.setStatus("Copied " + utils.OrDefault(r.Service, "record") + " as JSON")
}
