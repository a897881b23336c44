package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/folioworks/folio/internal/api"
	"github.com/folioworks/folio/internal/cache"
	"github.com/folioworks/folio/internal/logger"
	"github.com/folioworks/folio/internal/model"
)

// Messages

type sessionExpiredMsg struct{}

type loginResultMsg struct{ err error }

type logoutDoneMsg struct{}

type revalidateMsg struct {
	user *model.User
	err  error
}

type projectsLoadedMsg struct {
	items    []model.Project
	degraded bool
	err      error
}

type certsLoadedMsg struct {
	items    []model.Certificate
	degraded bool
	err      error
}

type timelineLoadedMsg struct {
	items    []model.TimelineItem
	degraded bool
	err      error
}

type skillsLoadedMsg struct {
	items    []model.Skill
	degraded bool
	err      error
}

type messagesLoadedMsg struct {
	items []model.ContactMessage
	err   error
}

// mutationDoneMsg reports the outcome of a create, update or delete.
type mutationDoneMsg struct {
	section Section
	verb    string
	err     error
}

type markReadDoneMsg struct {
	id  string
	err error
}

// requestTimeout bounds every API call fired from the TUI.
const requestTimeout = 15 * time.Second

func apiContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// Commands

// waitForExpiry blocks on the monitor's expiry signal. Re-armed after
// every delivery so later expiries are never missed.
func (m Model) waitForExpiry() tea.Cmd {
	ch := m.expiredCh
	return func() tea.Msg {
		<-ch
		return sessionExpiredMsg{}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		ctx, cancel := apiContext()
		defer cancel()
		return loginResultMsg{err: mgr.Login(ctx, email, password)}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		ctx, cancel := apiContext()
		defer cancel()
		mgr.Logout(ctx)
		return logoutDoneMsg{}
	}
}

// revalidateCmd re-checks the rehydrated session against the server.
func (m Model) revalidateCmd() tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		ctx, cancel := apiContext()
		defer cancel()
		user, err := mgr.CurrentUser(ctx)
		return revalidateMsg{user: user, err: err}
	}
}

// fetchList loads one public entity list. Fresh rows refresh the local
// cache; when the API is unreachable and the static fallback is missing
// too, the last cached rows are served degraded instead of an error.
func fetchList[T any](client *api.Client, contentCache *cache.Cache, entity string) ([]T, bool, error) {
	ctx, cancel := apiContext()
	defer cancel()
	result, err := api.List[T](ctx, client, entity)
	if err == nil {
		if contentCache != nil && !result.Degraded {
			_ = cache.SaveItems(contentCache, entity, result.Items)
		}
		return result.Items, result.Degraded, nil
	}
	if contentCache != nil && errors.Is(err, api.ErrUnreachable) {
		if items, _, cerr := cache.LoadItems[T](contentCache, entity); cerr == nil {
			logger.Warn("Serving entity from local cache", logger.F("entity", entity))
			return items, true, nil
		}
	}
	return nil, false, err
}

func (m Model) loadProjectsCmd() tea.Cmd {
	client, contentCache := m.client, m.cache
	return func() tea.Msg {
		items, degraded, err := fetchList[model.Project](client, contentCache, model.EntityProjects)
		return projectsLoadedMsg{items: items, degraded: degraded, err: err}
	}
}

func (m Model) loadCertsCmd() tea.Cmd {
	client, contentCache := m.client, m.cache
	return func() tea.Msg {
		items, degraded, err := fetchList[model.Certificate](client, contentCache, model.EntityCertificates)
		return certsLoadedMsg{items: items, degraded: degraded, err: err}
	}
}

func (m Model) loadTimelineCmd() tea.Cmd {
	client, contentCache := m.client, m.cache
	return func() tea.Msg {
		items, degraded, err := fetchList[model.TimelineItem](client, contentCache, model.EntityTimeline)
		return timelineLoadedMsg{items: items, degraded: degraded, err: err}
	}
}

func (m Model) loadSkillsCmd() tea.Cmd {
	client, contentCache := m.client, m.cache
	return func() tea.Msg {
		items, degraded, err := fetchList[model.Skill](client, contentCache, model.EntitySkills)
		return skillsLoadedMsg{items: items, degraded: degraded, err: err}
	}
}

// loadMessagesCmd never uses the fallback: the inbox is private data.
func (m Model) loadMessagesCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := apiContext()
		defer cancel()
		result, err := api.List[model.ContactMessage](ctx, client, model.EntityMessages)
		return messagesLoadedMsg{items: result.Items, err: err}
	}
}

func (m *Model) loadSectionCmd(s Section) tea.Cmd {
	switch s {
	case SectionProjects:
		m.projects.SetLoading(true)
		return m.loadProjectsCmd()
	case SectionCertificates:
		m.certs.SetLoading(true)
		return m.loadCertsCmd()
	case SectionTimeline:
		m.timeline.SetLoading(true)
		return m.loadTimelineCmd()
	case SectionSkills:
		m.skills.SetLoading(true)
		return m.loadSkillsCmd()
	default:
		m.messages.SetLoading(true)
		return m.loadMessagesCmd()
	}
}

func (m *Model) loadAllCmds() []tea.Cmd {
	cmds := []tea.Cmd{
		m.loadSectionCmd(SectionProjects),
		m.loadSectionCmd(SectionCertificates),
		m.loadSectionCmd(SectionTimeline),
		m.loadSectionCmd(SectionSkills),
	}
	if m.mgr.Authenticated() {
		cmds = append(cmds, m.loadSectionCmd(SectionMessages))
	}
	return cmds
}

func (m Model) deleteCmd(section Section, id string) tea.Cmd {
	client := m.client
	entity := section.entity()
	return func() tea.Msg {
		ctx, cancel := apiContext()
		defer cancel()
		return mutationDoneMsg{section: section, verb: "deleted", err: api.Delete(ctx, client, entity, id)}
	}
}

func (m Model) markReadCmd(id string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := apiContext()
		defer cancel()
		return markReadDoneMsg{id: id, err: client.MarkMessageRead(ctx, id)}
	}
}
