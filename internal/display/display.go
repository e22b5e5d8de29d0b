// Package display renders built queries and form rows for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/recipeblog/recipeq/internal/config"
	"github.com/recipeblog/recipeq/internal/form"
	"github.com/recipeblog/recipeq/pkg/query"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5B47E0")).
			Padding(0, 2)

	methodStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#61AFEF")).
			Padding(0, 1)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61AFEF")).
			MarginTop(1)

	paramStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98C379"))

	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5C6370")).
			Italic(true)

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E06C75"))

	descriptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ABB2BF")).
				MarginLeft(2)
)

// RenderExplain shows how req was turned into targetURL: every candidate
// value, whether it was emitted, and the encoded pair it became.
func RenderExplain(profile config.Profile, req query.Request, targetURL string) string {
	var b strings.Builder

	method := profile.Method
	if method == "" {
		method = "GET"
	}
	b.WriteString(titleStyle.Render(profile.Name))
	b.WriteString(" ")
	b.WriteString(methodStyle.Render(method))
	b.WriteString(" ")
	b.WriteString(pathStyle.Render(req.BasePath))
	b.WriteString("\n")

	if profile.Description != "" {
		b.WriteString(descriptionStyle.Render(profile.Description))
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Fields:"))
	b.WriteString("\n")

	width := 0
	for _, f := range req.Fields {
		if len(f.Name) > width {
			width = len(f.Name)
		}
	}

	emitted := 0
	for _, f := range req.Fields {
		if len(f.Values) == 0 {
			line := fmt.Sprintf("  %-*s  (not supplied)", width, f.Name)
			b.WriteString(skippedStyle.Render(line))
			b.WriteString("\n")
			continue
		}
		for _, v := range f.Values {
			if strings.TrimSpace(v) == "" {
				line := fmt.Sprintf("  %-*s  %q skipped (blank)", width, f.Name, v)
				b.WriteString(skippedStyle.Render(line))
				b.WriteString("\n")
				continue
			}
			delim := "&"
			if emitted == 0 {
				delim = "?"
			}
			emitted++
			b.WriteString(paramStyle.Render(fmt.Sprintf("  %-*s  %q", width, f.Name, v)))
			b.WriteString(" -> ")
			b.WriteString(codeStyle.Render(delim + query.Escape(f.Name) + "=" + query.Escape(v)))
			b.WriteString("\n")
		}
	}

	b.WriteString(sectionStyle.Render("URL:"))
	b.WriteString("\n")
	b.WriteString("  " + codeStyle.Render(targetURL))
	b.WriteString("\n")

	return b.String()
}

// RenderRows lists the input names of each row, one row per line
func RenderRows(rows []form.Row) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(pathStyle.Render(fmt.Sprintf("row %d", row.Index)))
		for _, name := range row.Inputs {
			b.WriteString("  ")
			b.WriteString(paramStyle.Render(name))
		}
		b.WriteString("\n")
	}
	return b.String()
}
