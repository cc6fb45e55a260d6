package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/Makepad-fr/tada/internal/model"
)

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// PanelString frames content with the current theme's border.
func PanelString(content string) string {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(content)
}

// Panel draws a framed box around lines.
func Panel(w io.Writer, lines []string) {
	fmt.Fprintln(w, PanelString(strings.Join(lines, "\n")))
}

// Truncate cuts s to width visible cells, ANSI sequences included.
func Truncate(s string, width int) string {
	if width <= 0 || ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// Header is the title line with live counts.
func Header(title string, todos []model.Todo) string {
	t := Current()
	done, pending := model.Stats(todos)
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render(title),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), len(todos),
	)
}

// Box returns the styled checkbox for completed.
func Box(completed bool) string {
	t := Current()
	if completed {
		return t.Success.Render(t.BoxChecked)
	}
	return t.Muted.Render(t.BoxUnchecked)
}

// TodoLine renders one todo on a single line: checkbox, id, title and
// the due date relative to now. width <= 0 disables truncation.
func TodoLine(td model.Todo, width int, now time.Time) string {
	t := Current()
	title := td.Title
	if td.Completed {
		title = t.Done.Render(title)
	}
	line := fmt.Sprintf("%s %s %s", Box(td.Completed), t.Muted.Render(fmt.Sprintf("#%d", td.ID)), title)
	if td.DueDate != nil {
		due := "due " + Relative(td.DueDate.Time, now)
		style := t.Muted
		if !td.Completed && td.DueDate.Before(now) {
			style = t.Error
		}
		line += "  " + style.Render(due)
	}
	return Truncate(line, width)
}

// Relative renders then relative to now, e.g. "3 hours ago".
func Relative(then, now time.Time) string {
	return humanize.RelTime(then, now, "ago", "from now")
}
