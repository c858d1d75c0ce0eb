package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/tasklist"
)

const dueLayout = "2006-01-02 15:04"

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	subtleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	activePageStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#89B4FA"))

	priorityStyles = map[models.Priority]lipgloss.Style{
		models.PriorityHigh:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8")),
		models.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		models.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
	}
)

func renderPriority(p models.Priority) string {
	style, ok := priorityStyles[p]
	if !ok {
		return string(p)
	}
	return style.Render(string(p))
}

func writeTask(w io.Writer, task models.Task) {
	fmt.Fprintf(w, "  %s  %s  [%s] %s  due %s",
		subtleStyle.Render(task.ID),
		headerStyle.Render(task.Title),
		task.Status,
		renderPriority(task.Priority),
		task.DueAt.Local().Format(dueLayout),
	)
	if len(task.Tags) > 0 {
		fmt.Fprintf(w, "  #%s", strings.Join(task.Tags, " #"))
	}
	fmt.Fprintln(w)
}

// writeTaskDetail prints every field of one task as a bordered card.
func writeTaskDetail(w io.Writer, task models.Task) {
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#89B4FA")).
		Padding(0, 1)
	labelStyle := lipgloss.NewStyle().
		Bold(true).
		Width(13)

	description := task.Description
	if description == "" {
		description = subtleStyle.Render("(no description)")
	}
	tags := subtleStyle.Render("(none)")
	if len(task.Tags) > 0 {
		tags = "#" + strings.Join(task.Tags, " #")
	}

	rows := []struct {
		label string
		value string
	}{
		{"ID", task.ID},
		{"Status", string(task.Status)},
		{"Priority", renderPriority(task.Priority)},
		{"Due", task.DueAt.Local().Format(dueLayout)},
		{"Tags", tags},
		{"Created", task.CreatedAt.Local().Format(dueLayout)},
		{"Updated", task.UpdatedAt.Local().Format(dueLayout)},
	}

	var content strings.Builder
	content.WriteString(headerStyle.Render(task.Title))
	content.WriteString("\n\n")
	for _, row := range rows {
		content.WriteString(labelStyle.Render(row.label+":") + row.value + "\n")
	}
	content.WriteString("\n" + description)

	fmt.Fprintln(w, cardStyle.Render(content.String()))
}

func writeTasks(w io.Writer, tasks []models.Task) {
	for _, task := range tasks {
		writeTask(w, task)
	}
}

// writeView prints the current page followed by the page window. Pages are
// shown one-based.
func writeView(w io.Writer, view tasklist.View) {
	if view.Total == 0 {
		fmt.Fprintln(w, "No tasks found")
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Tasks (%d)", view.Total)))
	writeTasks(w, view.Items)

	pages := make([]string, 0, len(view.Window))
	for _, p := range view.Window {
		label := fmt.Sprintf("%d", p+1)
		if p == view.Page {
			label = activePageStyle.Render("[" + label + "]")
		}
		pages = append(pages, label)
	}
	fmt.Fprintf(w, "\nPage %d of %d  %s\n", view.Page+1, view.PageCount, strings.Join(pages, " "))
}

// parseDue accepts RFC 3339 timestamps, "2006-01-02 15:04" and plain dates,
// the last two in local time.
func parseDue(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{dueLayout, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q: use YYYY-MM-DD or RFC 3339", s)
}
