package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/folioworks/folio/internal/api"
	"github.com/folioworks/folio/internal/auth"
	"github.com/folioworks/folio/internal/cache"
	"github.com/folioworks/folio/internal/config"
	"github.com/folioworks/folio/internal/logger"
	"github.com/folioworks/folio/internal/model"
	"github.com/folioworks/folio/internal/session"
	"github.com/folioworks/folio/internal/table"
)

// viewDashboard is the guard's home view; auth.ViewLogin is the other.
const viewDashboard = "dashboard"

// Pane represents which pane is focused
type Pane int

const (
	PaneSidebar Pane = iota
	PaneContent
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeForm
	ModeConfirmDelete
	ModeViewMessage
	ModeHelp
)

// Section is an entity section of the dashboard
type Section int

const (
	SectionProjects Section = iota
	SectionCertificates
	SectionTimeline
	SectionSkills
	SectionMessages
	sectionCount
)

var sectionNames = [sectionCount]string{"Projects", "Certificates", "Timeline", "Skills", "Inbox"}

func (s Section) String() string { return sectionNames[s] }

func (s Section) entity() string {
	switch s {
	case SectionProjects:
		return model.EntityProjects
	case SectionCertificates:
		return model.EntityCertificates
	case SectionTimeline:
		return model.EntityTimeline
	case SectionSkills:
		return model.EntitySkills
	default:
		return model.EntityMessages
	}
}

// opBox collects row-action intents fired by table callbacks. Shared by
// pointer so the callbacks survive bubbletea's value-copied model.
type opBox struct {
	editRow   any
	deleteRow any
	viewRow   any
}

func (b *opBox) reset() { b.editRow, b.deleteRow, b.viewRow = nil, nil, nil }

// pendingDelete is a delete awaiting the confirmation modal.
type pendingDelete struct {
	section Section
	row     any
	label   string
}

// Model is the dashboard TUI model
type Model struct {
	cfg     *config.Config
	mgr     *auth.Manager
	client  *api.Client
	cache   *cache.Cache
	guard   *auth.Guard
	monitor *session.Monitor

	expiredCh chan struct{}
	ops       *opBox

	// UI state
	width   int
	height  int
	view    string
	pane    Pane
	mode    Mode
	section Section

	// Login form
	emailInput    textinput.Model
	passwordInput textinput.Model
	loginFocus    int
	loginErr      string
	loggingIn     bool

	// Entity tables
	projects *table.Table[model.Project]
	certs    *table.Table[model.Certificate]
	timeline *table.Table[model.TimelineItem]
	skills   *table.Table[model.Skill]
	messages *table.Table[model.ContactMessage]
	degraded map[Section]bool
	loaded   map[Section]bool

	// Role the tables were built for; actions differ per role.
	tablesRole string

	// Search input
	search textinput.Model

	// Form + modals
	form    *entityForm
	pending *pendingDelete
	viewing *model.ContactMessage

	message string
}

// NewModel creates the dashboard model. The guard decides whether the
// first view is the login form or the dashboard itself.
func NewModel(cfg *config.Config, mgr *auth.Manager, client *api.Client, contentCache *cache.Cache) Model {
	logger.Info("Initializing dashboard model")
	applyAccent(cfg.AccentColor)

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Width = 36
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 36
	password.EchoMode = textinput.EchoPassword

	search := textinput.New()
	search.Placeholder = "search..."
	search.CharLimit = 64
	search.Width = 40

	m := Model{
		cfg:           cfg,
		mgr:           mgr,
		client:        client,
		cache:         contentCache,
		guard:         auth.NewGuard(mgr, viewDashboard),
		expiredCh:     make(chan struct{}, 1),
		ops:           &opBox{},
		emailInput:    email,
		passwordInput: password,
		search:        search,
		degraded:      make(map[Section]bool),
		loaded:        make(map[Section]bool),
	}

	// Non-blocking: the TUI only needs one pending expiry signal.
	notifyExpiry := func() {
		select {
		case m.expiredCh <- struct{}{}:
		default:
		}
	}
	m.monitor = session.NewMonitor(mgr.Store(), notifyExpiry)
	// Forced teardowns outside the monitor (failed refresh, server
	// rejection) reach the dashboard the same way a detected expiry does.
	mgr.Store().OnChange(func(st session.State) {
		if !st.Authenticated {
			notifyExpiry()
		}
	})

	m.buildTables()

	m.view = m.guard.Resolve(viewDashboard)
	if m.view == viewDashboard {
		m.monitor.Start()
	}

	return m
}

// buildTables constructs the entity tables. Row actions are wired only
// for operations the current role allows, so the table hides the rest.
func (m *Model) buildTables() {
	box := m.ops
	canEdit := m.mgr.CanEdit()
	canDelete := m.mgr.CanDelete()
	m.tablesRole = ""
	if u := m.mgr.Store().User(); u != nil {
		m.tablesRole = u.Role
	}

	pageSize := m.cfg.PageSize

	projectActions := table.Actions[model.Project]{}
	if canEdit {
		projectActions.OnEdit = func(p model.Project) { box.editRow = p }
	}
	if canDelete {
		projectActions.OnDelete = func(p model.Project) { box.deleteRow = p }
	}
	m.projects = table.New(
		[]table.Column[model.Project]{
			{Key: "title", Label: "Title", Sortable: true, Width: 28,
				Compare: func(a, b model.Project) int { return strings.Compare(a.Title, b.Title) },
				Render:  func(p model.Project) string { return p.Title }},
			{Key: "tech", Label: "Tech", Width: 24,
				Render: func(p model.Project) string { return strings.Join(p.Tech, ", ") }},
			{Key: "featured", Label: "★", Width: 3,
				Render: func(p model.Project) string {
					if p.Featured {
						return "★"
					}
					return ""
				}},
			{Key: "updated", Label: "Updated", Sortable: true, Width: 10,
				Compare: func(a, b model.Project) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
				Render:  func(p model.Project) string { return p.UpdatedAt.Format("2006-01-02") }},
		},
		func(p model.Project) string { return p.ID },
		table.WithSearchFields(
			func(p model.Project) string { return p.Title },
			func(p model.Project) string { return p.Description },
			func(p model.Project) string { return strings.Join(p.Tech, " ") },
		),
		table.WithActions(projectActions),
		table.WithEmptyMessage[model.Project]("No projects. Press 'a' to add one."),
		table.WithPageSize[model.Project](pageSize),
	)

	certActions := table.Actions[model.Certificate]{}
	if canEdit {
		certActions.OnEdit = func(c model.Certificate) { box.editRow = c }
	}
	if canDelete {
		certActions.OnDelete = func(c model.Certificate) { box.deleteRow = c }
	}
	m.certs = table.New(
		[]table.Column[model.Certificate]{
			{Key: "title", Label: "Title", Sortable: true, Width: 30,
				Compare: func(a, b model.Certificate) int { return strings.Compare(a.Title, b.Title) },
				Render:  func(c model.Certificate) string { return c.Title }},
			{Key: "issuer", Label: "Issuer", Sortable: true, Width: 18,
				Compare: func(a, b model.Certificate) int { return strings.Compare(a.Issuer, b.Issuer) },
				Render:  func(c model.Certificate) string { return c.Issuer }},
			{Key: "issued", Label: "Issued", Sortable: true, Width: 10,
				Compare: func(a, b model.Certificate) int { return a.IssuedAt.Compare(b.IssuedAt) },
				Render:  func(c model.Certificate) string { return c.IssuedAt.Format("Jan 2006") }},
		},
		func(c model.Certificate) string { return c.ID },
		table.WithSearchFields(
			func(c model.Certificate) string { return c.Title },
			func(c model.Certificate) string { return c.Issuer },
		),
		table.WithActions(certActions),
		table.WithEmptyMessage[model.Certificate]("No certificates. Press 'a' to add one."),
		table.WithPageSize[model.Certificate](pageSize),
	)

	timelineActions := table.Actions[model.TimelineItem]{}
	if canEdit {
		timelineActions.OnEdit = func(t model.TimelineItem) { box.editRow = t }
	}
	if canDelete {
		timelineActions.OnDelete = func(t model.TimelineItem) { box.deleteRow = t }
	}
	m.timeline = table.New(
		[]table.Column[model.TimelineItem]{
			{Key: "title", Label: "Title", Sortable: true, Width: 26,
				Compare: func(a, b model.TimelineItem) int { return strings.Compare(a.Title, b.Title) },
				Render:  func(t model.TimelineItem) string { return t.Title }},
			{Key: "org", Label: "Organization", Width: 18,
				Render: func(t model.TimelineItem) string { return t.Org }},
			{Key: "start", Label: "Start", Sortable: true, Width: 9,
				Compare: func(a, b model.TimelineItem) int { return a.StartDate.Compare(b.StartDate) },
				Render:  func(t model.TimelineItem) string { return t.StartDate.Format("Jan 2006") }},
			{Key: "end", Label: "End", Width: 9,
				Render: func(t model.TimelineItem) string {
					if t.EndDate == nil {
						return "present"
					}
					return t.EndDate.Format("Jan 2006")
				}},
		},
		func(t model.TimelineItem) string { return t.ID },
		table.WithSearchFields(
			func(t model.TimelineItem) string { return t.Title },
			func(t model.TimelineItem) string { return t.Org },
		),
		table.WithActions(timelineActions),
		table.WithEmptyMessage[model.TimelineItem]("No timeline entries. Press 'a' to add one."),
		table.WithPageSize[model.TimelineItem](pageSize),
	)

	skillActions := table.Actions[model.Skill]{}
	if canEdit {
		skillActions.OnEdit = func(s model.Skill) { box.editRow = s }
	}
	if canDelete {
		skillActions.OnDelete = func(s model.Skill) { box.deleteRow = s }
	}
	m.skills = table.New(
		[]table.Column[model.Skill]{
			{Key: "name", Label: "Name", Sortable: true, Width: 22,
				Compare: func(a, b model.Skill) int { return strings.Compare(a.Name, b.Name) },
				Render:  func(s model.Skill) string { return s.Name }},
			{Key: "category", Label: "Category", Sortable: true, Width: 14,
				Compare: func(a, b model.Skill) int { return strings.Compare(a.Category, b.Category) },
				Render:  func(s model.Skill) string { return s.Category }},
			{Key: "level", Label: "Level", Sortable: true, Width: 14,
				Compare: func(a, b model.Skill) int { return a.Level - b.Level },
				Render: func(s model.Skill) string {
					filled := s.Level / 10
					return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
				}},
		},
		func(s model.Skill) string { return s.ID },
		table.WithSearchFields(
			func(s model.Skill) string { return s.Name },
			func(s model.Skill) string { return s.Category },
		),
		table.WithActions(skillActions),
		table.WithEmptyMessage[model.Skill]("No skills. Press 'a' to add one."),
		table.WithPageSize[model.Skill](pageSize),
	)

	messageActions := table.Actions[model.ContactMessage]{
		OnView: func(msg model.ContactMessage) { box.viewRow = msg },
	}
	if canDelete {
		messageActions.OnDelete = func(msg model.ContactMessage) { box.deleteRow = msg }
	}
	m.messages = table.New(
		[]table.Column[model.ContactMessage]{
			{Key: "read", Label: " ", Width: 2,
				Render: func(msg model.ContactMessage) string {
					if msg.Read {
						return " "
					}
					return "●"
				}},
			{Key: "name", Label: "From", Sortable: true, Width: 18,
				Compare: func(a, b model.ContactMessage) int { return strings.Compare(a.Name, b.Name) },
				Render:  func(msg model.ContactMessage) string { return msg.Name }},
			{Key: "subject", Label: "Subject", Width: 30,
				Render: func(msg model.ContactMessage) string { return msg.Subject }},
			{Key: "date", Label: "Date", Sortable: true, Width: 10,
				Compare: func(a, b model.ContactMessage) int { return a.CreatedAt.Compare(b.CreatedAt) },
				Render:  func(msg model.ContactMessage) string { return msg.CreatedAt.Format("2006-01-02") }},
		},
		func(msg model.ContactMessage) string { return msg.ID },
		table.WithSearchFields(
			func(msg model.ContactMessage) string { return msg.Name },
			func(msg model.ContactMessage) string { return msg.Email },
			func(msg model.ContactMessage) string { return msg.Subject },
			func(msg model.ContactMessage) string { return msg.Body },
		),
		table.WithActions(messageActions),
		table.WithEmptyMessage[model.ContactMessage]("Inbox empty."),
		table.WithPageSize[model.ContactMessage](pageSize),
	)
}

// tableOps is the untyped slice of the table API shared by all sections.
type tableOps interface {
	Search(string)
	Query() string
	SortByIndex(int)
	CursorUp()
	CursorDown()
	NextPage()
	PrevPage()
	Render() string
	SetLoading(bool)
	Loading() bool
	Edit()
	View()
	CanEdit() bool
	CanDelete() bool
	CanView() bool
}

func (m *Model) tbl() tableOps {
	switch m.section {
	case SectionProjects:
		return m.projects
	case SectionCertificates:
		return m.certs
	case SectionTimeline:
		return m.timeline
	case SectionSkills:
		return m.skills
	default:
		return m.messages
	}
}

func (m *Model) sessionCountdown() string {
	d := m.mgr.Store().TimeUntilExpiry()
	if d == 0 {
		return "expired"
	}
	return d.Round(time.Minute).String()
}
