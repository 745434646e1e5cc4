package utils

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// DetailBuilder builds the labeled key-value text shown in detail overlays.
type DetailBuilder struct {
	b            strings.Builder
	labelStyle   lipgloss.Style
	sectionStyle lipgloss.Style
	width        int
}

// NewDetailBuilder creates a builder with a fixed-width label column.
// sectionStyle controls the rendering of section headings.
func NewDetailBuilder(labelWidth int, sectionStyle lipgloss.Style) *DetailBuilder {
	return &DetailBuilder{
		labelStyle:   sectionStyle.Width(labelWidth),
		sectionStyle: sectionStyle,
		width:        60,
	}
}

// SetWidth sets the wrap width used by Paragraph.
func (d *DetailBuilder) SetWidth(w int) {
	if w > 0 {
		d.width = w
	}
}

// Row writes a labeled key-value row. Blank values render as "-".
func (d *DetailBuilder) Row(label, value string) {
	fmt.Fprintf(&d.b, "  %s %s\n", d.labelStyle.Render(label), OrDefault(value, "-"))
}

// Section writes a section heading like "── title ──────...".
func (d *DetailBuilder) Section(title string) {
	pad := max(40-len(title), 4)
	heading := fmt.Sprintf("  ── %s %s", title, strings.Repeat("─", pad))
	d.b.WriteString(d.sectionStyle.Render(heading) + "\n")
}

// Paragraph writes free text wrapped to the builder width.
func (d *DetailBuilder) Paragraph(text string) {
	if text == "" {
		return
	}
	wrapped := lipgloss.NewStyle().Width(max(d.width-2, 10)).Render(text)
	for _, line := range strings.Split(wrapped, "\n") {
		d.b.WriteString("  " + strings.TrimRight(line, " ") + "\n")
	}
}

// Blank writes an empty line.
func (d *DetailBuilder) Blank() {
	d.b.WriteString("\n")
}

// WriteString appends arbitrary text (for custom formatting not covered by Row/Section).
func (d *DetailBuilder) WriteString(s string) {
	d.b.WriteString(s)
}

// String returns the accumulated content.
func (d *DetailBuilder) String() string {
	return d.b.String()
}
