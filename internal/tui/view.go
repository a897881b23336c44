package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/folioworks/folio/internal/auth"
)

func (m Model) View() string {
	if m.view == auth.ViewLogin {
		return m.loginView()
	}
	return m.dashboardView()
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("folio · admin login") + "\n\n")
	b.WriteString(LabelStyle.Render("Email") + m.emailInput.View() + "\n")
	b.WriteString(LabelStyle.Render("Password") + m.passwordInput.View() + "\n\n")

	switch {
	case m.loggingIn:
		b.WriteString(StatusBarStyle.Render("Signing in...") + "\n")
	case m.loginErr != "":
		b.WriteString(ErrorTextStyle.Render(m.loginErr) + "\n")
	case m.message != "":
		b.WriteString(StatusBarStyle.Render(m.message) + "\n")
	}

	b.WriteString("\n" + HelpStyle.Render("enter: sign in · tab: next field · ctrl+c: quit"))
	box := ModalStyle.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func (m Model) dashboardView() string {
	switch m.mode {
	case ModeForm:
		return m.overlay(m.formView())
	case ModeConfirmDelete:
		return m.overlay(m.confirmView())
	case ModeViewMessage:
		return m.overlay(m.messageView())
	case ModeHelp:
		return m.overlay(m.helpView())
	}

	header := HeaderStyle.Render("folio · portfolio admin")
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), m.contentView())
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.statusBar())
}

func (m Model) sidebarView() string {
	var b strings.Builder
	for s := Section(0); s < sectionCount; s++ {
		label := s.String()
		if m.degraded[s] {
			label += " ⚠"
		}
		if s == m.section {
			marker := "  "
			if m.pane == PaneSidebar {
				marker = "❯ "
			}
			b.WriteString(SectionItemSelectedStyle.Render(marker+label) + "\n")
		} else {
			b.WriteString(SectionItemStyle.Render("  "+label) + "\n")
		}
	}
	return SidebarStyle.Render(b.String())
}

func (m Model) contentView() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(m.section.String()))
	if m.degraded[m.section] {
		b.WriteString("  " + DegradedStyle.Render("⚠ offline fallback data"))
	}
	b.WriteString("\n\n")

	if m.mode == ModeSearch {
		b.WriteString("search: " + m.search.View() + "\n\n")
	} else if q := m.tbl().Query(); q != "" {
		b.WriteString(StatusBarStyle.Render(fmt.Sprintf("filter: %q (press / to change)", q)) + "\n\n")
	}

	b.WriteString(m.tbl().Render())
	return ContentStyle.Render(b.String())
}

func (m Model) statusBar() string {
	var parts []string
	if u := m.mgr.Store().User(); u != nil {
		parts = append(parts, fmt.Sprintf("%s (%s)", u.Email, u.Role))
	}
	parts = append(parts, "session: "+m.sessionCountdown())
	left := StatusBarStyle.Render(strings.Join(parts, " · "))

	if m.message != "" {
		return left + "  " + MessageStyle.Render(m.message)
	}
	return left + "  " + HelpStyle.Render("?: help")
}

func (m Model) formView() string {
	f := m.form
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(f.title) + "\n\n")
	for i := range f.fields {
		fld := &f.fields[i]
		marker := "  "
		if i == f.focus {
			marker = "❯ "
		}
		if fld.kind == fieldBool {
			box := "[ ]"
			if fld.boolVal {
				box = "[x]"
			}
			b.WriteString(marker + LabelStyle.Render(fld.label) + box + "\n")
		} else {
			b.WriteString(marker + LabelStyle.Render(fld.label) + fld.input.View() + "\n")
		}
	}
	if f.errMsg != "" {
		b.WriteString("\n" + ErrorTextStyle.Render(f.errMsg) + "\n")
	}
	b.WriteString("\n" + HelpStyle.Render("tab: next · space: toggle · ctrl+s/enter: save · esc: cancel"))
	return b.String()
}

func (m Model) confirmView() string {
	label := ""
	if m.pending != nil {
		label = m.pending.label
	}
	var b strings.Builder
	b.WriteString(ErrorTextStyle.Render("Delete "+label+"?") + "\n\n")
	b.WriteString("This cannot be undone.\n\n")
	b.WriteString(HelpStyle.Render("y: delete · n/esc: cancel"))
	return b.String()
}

func (m Model) messageView() string {
	msg := m.viewing
	if msg == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Message") + "\n\n")
	b.WriteString(LabelStyle.Render("From") + fmt.Sprintf("%s <%s>", msg.Name, msg.Email) + "\n")
	if msg.Subject != "" {
		b.WriteString(LabelStyle.Render("Subject") + msg.Subject + "\n")
	}
	b.WriteString(LabelStyle.Render("Received") + msg.CreatedAt.Format("2006-01-02 15:04") + "\n\n")
	b.WriteString(wordWrap(msg.Body, 60) + "\n\n")
	help := "esc: close"
	if m.messages.CanDelete() {
		help = "d: delete · " + help
	}
	b.WriteString(HelpStyle.Render(help))
	return b.String()
}

func (m Model) helpView() string {
	rows := [][2]string{
		{"↑/↓, j/k", "move"},
		{"tab, ←/→", "switch pane"},
		{"enter", "open / edit"},
		{"a", "add record"},
		{"e", "edit record"},
		{"d", "delete record (asks first)"},
		{"/", "search"},
		{"1-9", "sort by column"},
		{"[ ]", "previous / next page"},
		{"r", "refresh section"},
		{"L", "log out"},
		{"q", "quit"},
	}
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Keys") + "\n\n")
	for _, r := range rows {
		b.WriteString(LabelStyle.Render(r[0]) + r[1] + "\n")
	}
	b.WriteString("\n" + HelpStyle.Render("any key: close"))
	return b.String()
}

func (m Model) overlay(content string) string {
	box := ModalStyle.Render(content)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func wordWrap(s string, width int) string {
	var b strings.Builder
	line := 0
	for _, word := range strings.Fields(s) {
		if line > 0 && line+1+len(word) > width {
			b.WriteString("\n")
			line = 0
		} else if line > 0 {
			b.WriteString(" ")
			line++
		}
		b.WriteString(word)
		line += len(word)
	}
	return b.String()
}
