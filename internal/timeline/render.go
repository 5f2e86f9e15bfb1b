package timeline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ratesched/internal/sched"
)

var (
	palette = []lipgloss.Color{"39", "42", "214", "204", "99", "178"}

	labelStyle = lipgloss.NewStyle().Bold(true)
	axisStyle  = lipgloss.NewStyle().Faint(true)
)

// barStyle picks a stable colour per priority.
func barStyle(priority int) lipgloss.Style {
	i := priority % len(palette)
	if i < 0 {
		i += len(palette)
	}
	return lipgloss.NewStyle().Foreground(palette[i])
}

// Render draws records as a Gantt chart, one row per task in execution
// order, scaled so the whole timeline fits in width columns.
func Render(b sched.Batch, records []sched.ExecutionRecord, width int) string {
	if len(records) == 0 {
		return axisStyle.Render("(no tasks)")
	}
	if width < 10 {
		width = 10
	}

	priority := make(map[string]int, b.Len())
	labelWidth := 0
	for _, r := range records {
		labelWidth = max(labelWidth, lipgloss.Width(r.ID))
	}
	for _, t := range b.Tasks() {
		priority[t.ID] = t.Priority
	}

	origin := b.StartTime()
	span := max(records[len(records)-1].End-origin, 1)
	col := func(ms int64) int {
		return int((ms - origin) * int64(width) / span)
	}

	rows := make([]string, 0, len(records)+1)
	for _, r := range records {
		from, to := col(r.Start), col(r.End)
		if to <= from {
			to = from + 1
		}
		if to > width {
			from, to = max(0, width-(to-from)), width
		}

		bar := strings.Repeat(" ", from) +
			barStyle(priority[r.ID]).Render(strings.Repeat("█", to-from)) +
			strings.Repeat(" ", width-to)
		label := labelStyle.Render(r.ID + strings.Repeat(" ", labelWidth-lipgloss.Width(r.ID)))
		rows = append(rows, fmt.Sprintf("%s │%s│ %d-%d", label, bar, r.Start, r.End))
	}

	left := fmt.Sprintf("%d", origin)
	right := fmt.Sprintf("%d ms", origin+span)
	gap := max(1, width+2-len(left)-len(right))
	axis := strings.Repeat(" ", labelWidth+1) + left + strings.Repeat(" ", gap) + right
	rows = append(rows, axisStyle.Render(axis))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
