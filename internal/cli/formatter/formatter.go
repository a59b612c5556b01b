package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/shubh-37/x-ghostwriter/internal/agents"
	"github.com/shubh-37/x-ghostwriter/internal/models"
)

var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
)

const timestampLayout = "2006-01-02 15:04:05"

// FormatHistory renders records newest first, numbered from 1.
func FormatHistory(records []models.PostRecord) string {
	var b strings.Builder
	n := 1
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		b.WriteString("\n")
		b.WriteString(StyleHeader.Render(fmt.Sprintf("%d. %s", n, r.Timestamp.Format(timestampLayout))))
		b.WriteString("\n")
		b.WriteString("   " + StyleDim.Render("Type:") + " " + StyleBlue.Render(string(r.ContextType)) + "\n")
		b.WriteString("   " + StyleDim.Render("Content:") + " " + StyleFg.Render(r.Content) + "\n")
		b.WriteString("   " + StyleDim.Render("URL:") + " " + urlOrNA(r.URL) + "\n")
		n++
	}
	return b.String()
}

// FormatSchedule lists each posting time with its next run.
func FormatSchedule(entries []agents.ScheduleEntry, now time.Time) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "  %s  %s %s\n",
			StyleGreen.Render(e.At),
			StyleDim.Render("next run:"),
			StyleFg.Render(e.NextRun.Format(timestampLayout)+" ("+Until(e.NextRun, now)+")"),
		)
	}
	return b.String()
}

// Until renders the time left before t as a short duration such as "in 2h05m".
func Until(t, now time.Time) string {
	d := t.Sub(now).Round(time.Minute)
	if d <= 0 {
		return "due now"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("in %dm", m)
	}
	return fmt.Sprintf("in %dh%02dm", h, m)
}

func Success(msg string) string { return StyleGreen.Render("✅ " + msg) }

func Warning(msg string) string { return StyleYellow.Render("⚠️  " + msg) }

func Failure(msg string) string { return StyleRed.Render("❌ " + msg) }

func urlOrNA(url string) string {
	if url == "" {
		return StyleDim.Render("N/A")
	}
	return url
}
