package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/sessiondeck/internal/api"
	"github.com/five82/sessiondeck/internal/ledger"
	"github.com/five82/sessiondeck/internal/state"
)

const (
	statusPending = "pending"
	statusLoading = "loading"
	statusOK      = "ok"
	statusError   = "error"
	statusOffline = "offline"
)

const (
	headerLines        = 1
	endpointPanelLines = 7 // title + one row per endpoint + column header
	syncPanelLines     = 3
	activityPanelLines = activityEntries + 1
	footerLines        = 1
	panelChrome        = 4 // borders and padding
)

// endpointState summarises an endpoint for its badge.
func endpointState(st state.EndpointStatus) string {
	switch {
	case st.IsOffline():
		return statusOffline
	case st.LastError != nil:
		return statusError
	case st.Loading:
		return statusLoading
	case st.HasValue:
		return statusOK
	default:
		return statusPending
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	styles := m.theme.Styles()

	sections := []string{
		m.renderHeader(styles),
		styles.Panel.Width(m.width - 2).Render(m.renderEndpoints(styles)),
		styles.Panel.Width(m.width - 2).Render(m.renderSync(styles)),
		styles.Panel.Width(m.width - 2).Render(styles.Title.Render("News") + "\n" + m.news.View()),
		styles.Panel.Width(m.width - 2).Render(m.renderActivity(styles)),
		m.renderFooter(styles),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(styles Styles) string {
	env := m.snapshot.Environment
	if env == "" {
		env = "-"
	}
	updated := "never"
	if !m.lastUpdated.IsZero() {
		updated = m.lastUpdated.Format("15:04:05")
	}
	line := fmt.Sprintf("%s  env %s  updated %s",
		styles.Title.Render("sessiondeck"),
		styles.AccentText.Render(env),
		styles.MutedText.Render(updated))
	return styles.Header.Width(m.width).Render(line)
}

func (m Model) renderEndpoints(styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Endpoints"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(fmt.Sprintf("%-10s %-9s %6s  %-9s %s", "ENDPOINT", "STATE", "ITEMS", "AGE", "LAST ERROR")))
	now := m.now()
	for _, ep := range api.Endpoints() {
		st := m.snapshot.Status(ep)
		status := endpointState(st)
		badge := styles.StatusStyle(status).Render(fmt.Sprintf("%-7s", status))

		items := "-"
		if st.HasValue {
			items = fmt.Sprintf("%d", st.Items)
		}
		errText := ""
		if st.LastError != nil {
			errText = truncate(st.LastError.Error(), max(m.width-50, 20))
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "%-10s %s %6s  %-9s %s",
			ep.String(), badge, items, formatAge(st.LastUpdated, now),
			styles.DangerText.Render(errText))
	}
	return b.String()
}

func (m Model) renderSync(styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Ledger sync"))
	b.WriteString("\n")
	if !m.snapshot.HasSync {
		b.WriteString(styles.MutedText.Render("no run yet"))
		b.WriteString("\n")
		return b.String()
	}
	r := m.snapshot.Sync
	stage := r.Stage.String()
	prefix := ""
	if r.Stage == ledger.StageUploading {
		prefix = m.spinner.View() + " "
	}
	fmt.Fprintf(&b, "%s%s  ledger %d  candidates %d  scheduled %d",
		prefix, styles.StatusStyle(stage).Render(stage), r.Ledger, r.Candidates, r.Scheduled)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d  %s %d  %s %d",
		styles.SuccessText.Render("uploaded"), r.Uploaded,
		styles.DangerText.Render("failed"), r.Failed,
		styles.WarningText.Render("cancelled"), r.Cancelled)
	if r.Err != nil {
		b.WriteString("  ")
		b.WriteString(styles.DangerText.Render(truncate(r.Err.Error(), max(m.width-60, 20))))
	}
	return b.String()
}

func (m Model) renderNews() string {
	if len(m.snapshot.News) == 0 {
		return "No news."
	}
	styles := m.theme.Styles()
	lines := make([]string, 0, len(m.snapshot.News))
	for _, item := range m.snapshot.News {
		date := "          "
		if !item.Date.IsZero() {
			date = item.Date.Format("2006-01-02")
		}
		lines = append(lines, fmt.Sprintf("%s  %s", styles.MutedText.Render(date), item.Title))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderActivity(styles Styles) string {
	lines := []string{styles.Title.Render("Activity")}
	if len(m.activity) == 0 {
		lines = append(lines, styles.MutedText.Render("no warnings"))
	}
	for _, entry := range m.activity {
		text := truncate(entry.String(), max(m.width-8, 20))
		if entry.Level >= zerolog.ErrorLevel && entry.Level != zerolog.NoLevel {
			lines = append(lines, styles.DangerText.Render(text))
		} else {
			lines = append(lines, styles.WarningText.Render(text))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter(styles Styles) string {
	content := m.help.View(m.keys)
	if m.flash != "" && !m.showHelp {
		content = styles.AccentText.Render(m.flash) + "  " + content
	}
	return styles.Footer.Width(m.width).Render(content)
}

func formatAge(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
