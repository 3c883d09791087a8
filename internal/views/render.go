package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Theme        Theme
	Header       string
	LeftPane     string
	RightPane    string
	StatusLine   string
	StatusError  bool
	Footer       string
	Notification string
}

// Theme carries the accent colour picked in settings and the dark flag.
type Theme struct {
	Name   string
	Accent lipgloss.Color
	Dark   bool
}

var accents = map[string]lipgloss.Color{
	"default": lipgloss.Color("#6a11cb"),
	"green":   lipgloss.Color("#16a34a"),
	"orange":  lipgloss.Color("#ff7a00"),
}

func ThemeFor(name string, dark bool) Theme {
	accent, ok := accents[name]
	if !ok {
		name = "default"
		accent = accents[name]
	}
	return Theme{Name: name, Accent: accent, Dark: dark}
}

func (t Theme) GlamourStyle() string {
	if t.Dark {
		return "dark"
	}
	return "light"
}

func (t Theme) text() lipgloss.Color {
	if t.Dark {
		return lipgloss.Color("252")
	}
	return lipgloss.Color("236")
}

func (t Theme) muted() lipgloss.Color {
	if t.Dark {
		return lipgloss.Color("245")
	}
	return lipgloss.Color("8")
}

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func RenderApp(data AppData) string {
	th := data.Theme
	if th.Accent == "" {
		th = ThemeFor("default", th.Dark)
	}
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(th.Accent)
	statusStyle := lipgloss.NewStyle().Foreground(th.text())
	footerStyle := lipgloss.NewStyle().Foreground(th.muted())
	panel := panelStyle.BorderForeground(th.Accent)

	left := panel.Width(62).Render(data.LeftPane)
	row := left
	if strings.TrimSpace(data.RightPane) != "" {
		row = lipgloss.JoinHorizontal(lipgloss.Top, left, panel.Width(54).Render(data.RightPane))
	}

	status := statusStyle.Render(data.StatusLine)
	if data.StatusError {
		status = errorStyle.Render(data.StatusLine)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		row,
		status,
	}
	if data.Notification != "" {
		lines = append(lines, panel.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// RenderMarkdown renders md with glamour in the given style ("dark" or
// "light"), falling back to the raw text.
func RenderMarkdown(md, style string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if style == "" {
		style = "dark"
	}
	out, err := glamour.Render(md, style)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
