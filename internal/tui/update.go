package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/folioworks/folio/internal/api"
	"github.com/folioworks/folio/internal/auth"
	"github.com/folioworks/folio/internal/model"
)

var sectionSingular = [sectionCount]string{"Project", "Certificate", "Timeline entry", "Skill", "Message"}

func (s Section) singular() string { return sectionSingular[s] }

// Init starts the expiry watcher and, when the session survived
// rehydration, revalidates it and loads every section.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.waitForExpiry()}
	if m.view == viewDashboard {
		cmds = append(cmds, m.revalidateCmd())
		cmds = append(cmds, m.loadAllCmds()...)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.view == viewDashboard {
			m.monitor.Touch()
		}
		return m, nil

	case sessionExpiredMsg:
		// Already at login (e.g. the teardown came from logout): only
		// re-arm the watcher, the login message is already in place.
		if m.view == viewDashboard {
			m.toLogin("Session expired. Please log in again.")
		}
		return m, m.waitForExpiry()

	case logoutDoneMsg:
		m.toLogin("Logged out.")
		return m, nil

	case loginResultMsg:
		m.loggingIn = false
		if msg.err != nil {
			m.loginErr = loginErrorText(msg.err)
			return m, nil
		}
		m.loginErr = ""
		m.passwordInput.SetValue("")
		m.buildTables() // role is known now; actions differ per role
		m.view = m.guard.AfterLogin()
		m.monitor.Start()
		return m, tea.Batch(m.loadAllCmds()...)

	case revalidateMsg:
		if msg.err != nil && !m.mgr.Authenticated() {
			// Manager evicted the session (server rejection or local
			// invalidity). Unreachable servers never land here.
			m.toLogin("Session is no longer valid. Please log in again.")
			return m, nil
		}
		if msg.user != nil && msg.user.Role != m.tablesRole {
			// Rebuilding discards loaded rows, so only do it when the
			// revalidated role actually changed, and reload right after.
			m.buildTables()
			return m, tea.Batch(m.loadAllCmds()...)
		}
		return m, nil

	case projectsLoadedMsg:
		m.applyLoad(SectionProjects, msg.err, msg.degraded, func() { m.projects.SetData(msg.items) })
		return m, nil
	case certsLoadedMsg:
		m.applyLoad(SectionCertificates, msg.err, msg.degraded, func() { m.certs.SetData(msg.items) })
		return m, nil
	case timelineLoadedMsg:
		m.applyLoad(SectionTimeline, msg.err, msg.degraded, func() { m.timeline.SetData(msg.items) })
		return m, nil
	case skillsLoadedMsg:
		m.applyLoad(SectionSkills, msg.err, msg.degraded, func() { m.skills.SetData(msg.items) })
		return m, nil
	case messagesLoadedMsg:
		m.applyLoad(SectionMessages, msg.err, false, func() { m.messages.SetData(msg.items) })
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			m.message = ErrorTextStyle.Render(msg.verb + " failed: " + apiErrorText(msg.err))
			return m, nil
		}
		m.form = nil
		m.pending = nil
		m.viewing = nil
		m.mode = ModeNormal
		m.message = fmt.Sprintf("%s %s.", msg.section.singular(), msg.verb)
		return m, m.loadSectionCmd(msg.section)

	case markReadDoneMsg:
		if msg.err == nil {
			return m, m.loadSectionCmd(SectionMessages)
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == auth.ViewLogin {
			return m.updateLogin(msg)
		}
		m.monitor.Touch()
		return m.updateDashboard(msg)
	}

	return m, nil
}

// toLogin drops to the login view and resets transient dashboard state.
func (m *Model) toLogin(note string) {
	m.monitor.Stop()
	m.view = auth.ViewLogin
	m.mode = ModeNormal
	m.form = nil
	m.pending = nil
	m.viewing = nil
	m.message = note
	m.loginErr = ""
	m.loggingIn = false
	m.emailInput.SetValue("")
	m.passwordInput.SetValue("")
	m.loginFocus = 0
	m.emailInput.Focus()
	m.passwordInput.Blur()
}

func (m *Model) applyLoad(s Section, err error, degraded bool, set func()) {
	m.loaded[s] = true
	m.degraded[s] = degraded
	switch {
	case err == nil:
		set()
	case s == SectionProjects:
		m.projects.SetError(err)
	case s == SectionCertificates:
		m.certs.SetError(err)
	case s == SectionTimeline:
		m.timeline.SetError(err)
	case s == SectionSkills:
		m.skills.SetError(err)
	default:
		m.messages.SetError(err)
	}
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab", "shift+tab", "up", "down":
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.emailInput.Focus()
			m.passwordInput.Blur()
		} else {
			m.emailInput.Blur()
			m.passwordInput.Focus()
		}
		return m, nil

	case "enter":
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.emailInput.Blur()
			m.passwordInput.Focus()
			return m, nil
		}
		email, password := m.emailInput.Value(), m.passwordInput.Value()
		if email == "" || password == "" {
			m.loginErr = "Email and password are required."
			return m, nil
		}
		if m.loggingIn {
			return m, nil
		}
		m.loggingIn = true
		m.loginErr = ""
		return m, m.loginCmd(email, password)
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeSearch:
		return m.updateSearch(msg)
	case ModeForm:
		cmd := m.handleFormKey(msg)
		return m, cmd
	case ModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	case ModeViewMessage:
		return m.updateViewMessage(msg)
	case ModeHelp:
		m.mode = ModeNormal
		return m, nil
	}
	return m.updateNormal(msg)
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""

	// Digit keys sort by column position.
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		m.tbl().SortByIndex(int(s[0] - '1'))
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.monitor.Stop()
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, keys.Logout):
		return m, m.logoutCmd()

	case key.Matches(msg, keys.Tab):
		if m.pane == PaneSidebar {
			m.pane = PaneContent
		} else {
			m.pane = PaneSidebar
		}
		return m, nil

	case key.Matches(msg, keys.Left):
		m.pane = PaneSidebar
		return m, nil

	case key.Matches(msg, keys.Right):
		m.pane = PaneContent
		return m, nil

	case key.Matches(msg, keys.Up):
		if m.pane == PaneSidebar {
			if m.section > 0 {
				m.section--
			}
		} else {
			m.tbl().CursorUp()
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.pane == PaneSidebar {
			if m.section < sectionCount-1 {
				m.section++
			}
		} else {
			m.tbl().CursorDown()
		}
		return m, nil

	case key.Matches(msg, keys.NextPg):
		m.tbl().NextPage()
		return m, nil

	case key.Matches(msg, keys.PrevPg):
		m.tbl().PrevPage()
		return m, nil

	case key.Matches(msg, keys.Refresh):
		return m, m.loadSectionCmd(m.section)

	case key.Matches(msg, keys.Search):
		m.mode = ModeSearch
		m.search.SetValue(m.tbl().Query())
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Add):
		if m.section != SectionMessages && m.mgr.CanCreate() {
			m.openForm(nil)
		}
		return m, nil

	case key.Matches(msg, keys.Edit):
		m.ops.reset()
		m.tbl().Edit()
		if m.ops.editRow != nil {
			m.openForm(m.ops.editRow)
		}
		return m, nil

	case key.Matches(msg, keys.Enter):
		if m.pane == PaneSidebar {
			m.pane = PaneContent
			return m, nil
		}
		if m.section == SectionMessages {
			m.ops.reset()
			m.messages.View()
			if row, ok := m.ops.viewRow.(model.ContactMessage); ok {
				m.viewing = &row
				m.mode = ModeViewMessage
				if !row.Read {
					return m, m.markReadCmd(row.ID)
				}
			}
			return m, nil
		}
		m.ops.reset()
		m.tbl().Edit()
		if m.ops.editRow != nil {
			m.openForm(m.ops.editRow)
		}
		return m, nil

	case key.Matches(msg, keys.Delete):
		m.requestDelete()
		return m, nil
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = ModeNormal
		m.search.Blur()
		m.pane = PaneContent
		return m, nil
	case "esc":
		m.mode = ModeNormal
		m.search.Blur()
		m.search.SetValue("")
		m.tbl().Search("")
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.tbl().Search(m.search.Value())
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		cmd := m.confirmDelete()
		return m, cmd
	case "n", "esc":
		m.pending = nil
		m.mode = ModeNormal
		return m, nil
	}
	return m, nil
}

func (m Model) updateViewMessage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape), key.Matches(msg, keys.Enter), key.Matches(msg, keys.Quit):
		m.viewing = nil
		m.mode = ModeNormal
		return m, nil
	case key.Matches(msg, keys.Delete):
		if m.viewing != nil && m.messages.CanDelete() {
			m.pending = &pendingDelete{section: SectionMessages, row: *m.viewing, label: "message from " + m.viewing.Name}
			m.mode = ModeConfirmDelete
		}
		return m, nil
	}
	return m, nil
}

// openForm opens a create form (row nil) or an edit form for the given
// row, which must be one of the content entity types.
func (m *Model) openForm(row any) {
	switch v := row.(type) {
	case nil:
		switch m.section {
		case SectionProjects:
			m.form = newProjectForm(nil)
		case SectionCertificates:
			m.form = newCertificateForm(nil)
		case SectionTimeline:
			m.form = newTimelineForm(nil)
		case SectionSkills:
			m.form = newSkillForm(nil)
		default:
			return
		}
	case model.Project:
		m.form = newProjectForm(&v)
	case model.Certificate:
		m.form = newCertificateForm(&v)
	case model.TimelineItem:
		m.form = newTimelineForm(&v)
	case model.Skill:
		m.form = newSkillForm(&v)
	default:
		return
	}
	m.mode = ModeForm
}

// requestDelete asks the focused table for its selection and raises the
// confirmation modal. Deletes never bypass confirmation.
func (m *Model) requestDelete() {
	switch m.section {
	case SectionProjects:
		if row, ok := m.projects.RequestDelete(); ok {
			m.pending = &pendingDelete{section: m.section, row: row, label: row.Title}
		}
	case SectionCertificates:
		if row, ok := m.certs.RequestDelete(); ok {
			m.pending = &pendingDelete{section: m.section, row: row, label: row.Title}
		}
	case SectionTimeline:
		if row, ok := m.timeline.RequestDelete(); ok {
			m.pending = &pendingDelete{section: m.section, row: row, label: row.Title}
		}
	case SectionSkills:
		if row, ok := m.skills.RequestDelete(); ok {
			m.pending = &pendingDelete{section: m.section, row: row, label: row.Name}
		}
	default:
		if row, ok := m.messages.RequestDelete(); ok {
			m.pending = &pendingDelete{section: m.section, row: row, label: "message from " + row.Name}
		}
	}
	if m.pending != nil {
		m.mode = ModeConfirmDelete
	}
}

// confirmDelete routes the approved row back through the table's delete
// action and fires the API call.
func (m *Model) confirmDelete() tea.Cmd {
	if m.pending == nil {
		m.mode = ModeNormal
		return nil
	}
	p := m.pending
	m.ops.reset()

	var id string
	switch row := p.row.(type) {
	case model.Project:
		m.projects.ConfirmDelete(row)
		id = m.projects.Key(row)
	case model.Certificate:
		m.certs.ConfirmDelete(row)
		id = m.certs.Key(row)
	case model.TimelineItem:
		m.timeline.ConfirmDelete(row)
		id = m.timeline.Key(row)
	case model.Skill:
		m.skills.ConfirmDelete(row)
		id = m.skills.Key(row)
	case model.ContactMessage:
		m.messages.ConfirmDelete(row)
		id = m.messages.Key(row)
	}

	m.pending = nil
	m.viewing = nil
	m.mode = ModeNormal
	if m.ops.deleteRow == nil || id == "" {
		return nil // action not permitted for this role
	}
	return m.deleteCmd(p.section, id)
}

func loginErrorText(err error) string {
	var apiErr *api.APIError
	switch {
	case errors.Is(err, api.ErrUnreachable):
		return "Server unreachable. Check the server URL and try again."
	case errors.Is(err, api.ErrUnauthorized):
		return "Invalid email or password."
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}

func apiErrorText(err error) string {
	var apiErr *api.APIError
	switch {
	case errors.Is(err, api.ErrUnreachable):
		return "server unreachable"
	case errors.Is(err, api.ErrUnauthorized):
		return "not authorized"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return err.Error()
	}
}
