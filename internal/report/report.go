// Package report renders one derived dashboard state for non-interactive
// output: a terminal table or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/shopspring/decimal"

	"tasnim.dev/cloudspend/internal/spend"
	"tasnim.dev/cloudspend/internal/tui/theme"
	"tasnim.dev/cloudspend/internal/utils"
)

// Summary is the serializable form of a derived state.
type Summary struct {
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	PageSize   int            `json:"page_size"`
	TotalRows  int            `json:"total_rows"`
	Loaded     int            `json:"loaded"`
	Filters    Filters        `json:"filters"`
	Sort       string         `json:"sort"`
	Aggregates Aggregates     `json:"aggregates"`
	Rows       []spend.Record `json:"rows"`

	page spend.Page
}

// Filters mirrors spend.Criteria with JSON names.
type Filters struct {
	Cloud string `json:"cloud,omitempty"`
	Team  string `json:"team,omitempty"`
	Env   string `json:"env,omitempty"`
	Date  string `json:"date,omitempty"`
}

// Aggregates mirrors spend.Aggregates with JSON names.
type Aggregates struct {
	TotalRecords     int                        `json:"total_records"`
	ProvidersCount   int                        `json:"providers_count"`
	TotalSpend       decimal.Decimal            `json:"total_spend"`
	TotalsByProvider map[string]decimal.Decimal `json:"totals_by_provider"`
	Unattributed     decimal.Decimal            `json:"unattributed"`
	TotalsByTeam     map[string]decimal.Decimal `json:"totals_by_team"`
}

// New builds a Summary from a State.
func New(s *spend.State) Summary {
	d := s.Derive()
	c := s.Criteria()
	rows := d.Page.Rows
	if rows == nil {
		rows = []spend.Record{}
	}
	return Summary{
		Page:       d.Page.Number,
		TotalPages: d.Page.TotalPages,
		PageSize:   d.Page.Size,
		TotalRows:  d.Page.TotalRows,
		Loaded:     d.Loaded,
		Filters:    Filters{Cloud: c.Cloud, Team: c.Team, Env: c.Env, Date: c.Date},
		Sort:       s.Sort().String(),
		Aggregates: Aggregates{
			TotalRecords:     d.Aggregates.TotalRecords,
			ProvidersCount:   d.Aggregates.ProvidersCount,
			TotalSpend:       d.Aggregates.TotalSpend,
			TotalsByProvider: d.Aggregates.TotalsByProvider,
			Unattributed:     d.Aggregates.Unattributed,
			TotalsByTeam:     d.Aggregates.TotalsByTeam,
		},
		Rows: rows,
		page: d.Page,
	}
}

// WriteJSON writes s as indented JSON.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return nil
}

var (
	labelStyle  = theme.MutedStyle
	valueStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	costStyle   = cellStyle.Align(lipgloss.Right)
)

// WriteText writes the aggregates, the active controls and the requested
// page as a table.
func WriteText(w io.Writer, s Summary) error {
	var b strings.Builder

	agg := s.Aggregates
	b.WriteString(metric("Total spend", utils.GroupedCurrency(agg.TotalSpend, "")) + "   " +
		metric("Records", strconv.Itoa(agg.TotalRecords)) + "   " +
		metric("Providers", strconv.Itoa(agg.ProvidersCount)) + "\n")

	var providers []string
	for _, p := range spend.KnownProviders {
		providers = append(providers, metric(p, utils.GroupedCurrency(agg.TotalsByProvider[p], "")))
	}
	if !agg.Unattributed.IsZero() {
		providers = append(providers, metric("Unattributed", utils.GroupedCurrency(agg.Unattributed, "")))
	}
	b.WriteString(strings.Join(providers, "   ") + "\n")

	b.WriteString(labelStyle.Render("Filters: ") + filtersLine(s.Filters) + "   " +
		labelStyle.Render("Sort: ") + sortLabel(s.Sort) + "\n\n")

	if len(s.Rows) == 0 {
		b.WriteString(labelStyle.Render("No spend records match the current filters.") + "\n")
	} else {
		b.WriteString(rowsTable(s.Rows).String() + "\n")
	}

	status := s.page.Showing()
	if ps := s.page.Status(); ps != "" {
		status += " · " + ps
	}
	b.WriteString(labelStyle.Render(status) + "\n")

	_, err := lipgloss.Fprint(w, b.String())
	return err
}

func metric(label, value string) string {
	return labelStyle.Render(label+": ") + valueStyle.Render(value)
}

func filtersLine(f Filters) string {
	part := func(name, v string) string {
		return name + "=" + utils.OrDefault(v, "All")
	}
	return strings.Join([]string{
		part("cloud", f.Cloud),
		part("team", f.Team),
		part("env", f.Env),
		part("date", f.Date),
	}, " ")
}

func sortLabel(s string) string {
	spec, err := spend.ParseSortSpec(s)
	if err != nil {
		return s
	}
	return spec.Label()
}

func rowsTable(rows []spend.Record) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(labelStyle).
		Headers("Date", "Provider", "Service", "Team", "Env", "Cost (USD)").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 5:
				return costStyle
			default:
				return cellStyle
			}
		})

	for _, r := range rows {
		t.Row(
			utils.OrDefault(r.Day(), "N/A"),
			utils.OrDefault(r.Provider(), "N/A"),
			utils.OrDefault(r.Service, "-"),
			utils.OrDefault(r.Team, "-"),
			utils.OrDefault(r.Env, "N/A"),
			utils.Currency(r.CostUSD, ""),
		)
	}
	return t
}
