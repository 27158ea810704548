package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/horaculo/internal/session"
)

func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = 100
	}
	contentWidth := max(width-sidebarWidth-6, 30)

	var content string
	if m.state.ActiveScreen == session.ScreenPortal {
		content = m.portalView(contentWidth)
	} else {
		content = renderResultScreen(m.state.ActiveScreen, m.state.Result, contentWidth)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.sidebarView(),
		panelStyle.Width(contentWidth).Render(content),
	)
	return m.placeWithFooter(m.headerView(width)+"\n"+body, m.statusLine(width), m.footerView(width))
}

func (m Model) headerView(width int) string {
	badge := lipgloss.NewStyle().Foreground(colorMantle).Background(modeColor(string(m.mode))).Bold(true).Padding(0, 1).Render(string(m.mode))
	line := headerAppStyle.Render(appName) + headerBarStyle.Padding(0).Render("  market intelligence  ") + badge
	return headerBarStyle.Width(width).Render(line)
}

func (m Model) sidebarView() string {
	var lines []string
	for i, s := range session.Screens() {
		label := fmt.Sprintf("%d %s", i+1, screenTitles[s])
		if s == m.state.ActiveScreen {
			lines = append(lines, activeItemStyle.Render(padRight("▸ "+label, sidebarWidth-4)))
			continue
		}
		lines = append(lines, inactiveItemStyle.Render("  "+label))
	}
	if m.state.Loading {
		lines = append(lines, "", m.spinner.View()+" scanning")
	} else if m.state.HasResult() {
		lines = append(lines, "", mutedStyle.Render("result: "+truncate(m.state.Query, sidebarWidth-12)))
	}
	return sidebarStyle.Width(sidebarWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) portalView(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("HORACULO // PORTAL"))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("MODE  "))
	for _, mode := range []session.Mode{session.ModeMacro, session.ModeCrypto} {
		st := mutedStyle
		if mode == m.mode {
			st = lipgloss.NewStyle().Foreground(modeColor(string(mode))).Bold(true).Underline(true)
		}
		b.WriteString(st.Render(string(mode)) + "  ")
	}
	b.WriteString(mutedStyle.Render("(tab)"))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.state.Loading {
		b.WriteString(buttonBusyStyle.Render("SCANNING..."))
	} else {
		b.WriteString(buttonStyle.Render("IGNITE"))
	}
	if m.formErr != "" {
		b.WriteString("\n" + errorStyle.Render(m.formErr))
	}
	if len(m.suggestions) > 0 && !m.state.Loading {
		b.WriteString("\n" + warnStyle.Render("did you mean: "+m.suggestions[0]+"?") + mutedStyle.Render("  ctrl+s"))
	}

	if m.state.Loading || len(m.state.Logs) > 0 {
		b.WriteString("\n\n" + tableHeaderStyle.Render("ENGINE LOG"))
		for _, line := range m.state.Logs {
			b.WriteString("\n" + logLineStyle.Render("> "+truncate(line, width-4)))
		}
		if m.state.Loading {
			b.WriteString("\n" + m.spinner.View())
		}
	}

	if m.state.HasResult() {
		if summary := renderPortalResult(m.state.Result, width); summary != "" {
			b.WriteString("\n\n" + summary)
		}
	}

	if len(m.recent) > 0 {
		b.WriteString("\n\n" + tableHeaderStyle.Render("RECENT SEARCHES"))
		for _, r := range m.recent {
			status := r.Status
			st := mutedStyle
			switch status {
			case session.StatusSuccess:
				st = infoStyle
			case session.StatusFailed:
				st = errorStyle
			}
			b.WriteString(fmt.Sprintf("\n%s %s %s",
				padRight(r.Mode, 7),
				padRight(truncate(r.Query, 24), 25),
				st.Render(status)))
		}
	}
	return b.String()
}

func (m Model) statusLine(width int) string {
	text := m.status
	if m.state.Loading {
		text = fmt.Sprintf("Scanning %q in %s mode...", m.state.Query, m.state.Mode)
	} else if text == "" && m.state.Err != nil {
		text = session.FailureLine(m.state.Err)
	}
	if text == "" {
		text = "Ready."
	}
	return statusBarStyle.Width(width).Render(truncate(text, max(width-4, 1)))
}

func (m Model) footerView(width int) string {
	scope := m.scope()
	bindings := m.keys.HelpBindings(scope)
	if !isolated[scope] && scope != scopeGlobal {
		bindings = append(bindings, m.keys.HelpBindings(scopeGlobal)...)
	}
	parts := make([]string, 0, len(bindings))
	seen := map[string]bool{}
	for _, kb := range bindings {
		h := kb.Help()
		if seen[h.Key] {
			continue
		}
		seen[h.Key] = true
		parts = append(parts, helpKeyStyle.Render(h.Key)+" "+helpDescStyle.Render(h.Desc))
	}
	return footerStyle.Width(width).Render(truncate(strings.Join(parts, "  "), max(width-4, 1)))
}

func (m Model) placeWithFooter(body, statusLine, footer string) string {
	if m.height == 0 {
		return body + "\n\n" + statusLine + "\n" + footer
	}
	contentHeight := max(m.height-2, 1)
	if lipgloss.Height(body) >= contentHeight {
		return body + "\n" + statusLine + "\n" + footer
	}
	main := lipgloss.Place(m.width, contentHeight, lipgloss.Left, lipgloss.Top, body)
	// full-width lines prevent ghosting from previous frames
	lines := splitLines(main)
	for i, line := range lines {
		lines[i] = padRight(line, m.width)
	}
	return strings.Join(lines, "\n") + "\n" + statusLine + "\n" + footer
}
