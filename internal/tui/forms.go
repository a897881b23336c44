package tui

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/folioworks/folio/internal/api"
	"github.com/folioworks/folio/internal/model"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldInt
	fieldBool
	fieldDate    // YYYY-MM-DD, required
	fieldOptDate // YYYY-MM-DD or empty
	fieldList    // comma-separated
	fieldURL     // http(s) URL or empty
)

const dateLayout = "2006-01-02"

type formField struct {
	key      string
	label    string
	kind     fieldKind
	required bool
	input    textinput.Model
	boolVal  bool
}

// entityForm is the create/edit modal for one record. It works purely on
// field values; the typed record is built at submit time.
type entityForm struct {
	section Section
	title   string
	editing bool
	id      string
	fields  []formField
	focus   int
	errMsg  string

	// Snapshot of the initial values, for the no-change check on edit.
	initial []string
}

func newField(key, label string, kind fieldKind, required bool, value string) formField {
	in := textinput.New()
	in.Placeholder = label
	in.CharLimit = 256
	in.Width = 44
	in.SetValue(value)
	return formField{key: key, label: label, kind: kind, required: required, input: in}
}

func newBoolField(key, label string, value bool) formField {
	f := formField{key: key, label: label, kind: fieldBool, boolVal: value}
	return f
}

func (f *entityForm) snapshot() []string {
	vals := make([]string, len(f.fields))
	for i, fld := range f.fields {
		if fld.kind == fieldBool {
			vals[i] = strconv.FormatBool(fld.boolVal)
		} else {
			vals[i] = fld.input.Value()
		}
	}
	return vals
}

func (f *entityForm) dirty() bool {
	cur := f.snapshot()
	for i := range cur {
		if cur[i] != f.initial[i] {
			return true
		}
	}
	return false
}

func (f *entityForm) finish() {
	f.initial = f.snapshot()
	if len(f.fields) > 0 && f.fields[0].kind != fieldBool {
		f.fields[0].input.Focus()
	}
}

func (f *entityForm) value(key string) string {
	for i := range f.fields {
		if f.fields[i].key == key {
			return strings.TrimSpace(f.fields[i].input.Value())
		}
	}
	return ""
}

func (f *entityForm) boolValue(key string) bool {
	for i := range f.fields {
		if f.fields[i].key == key {
			return f.fields[i].boolVal
		}
	}
	return false
}

// Per-entity builders. A nil record means a blank create form.

func newProjectForm(p *model.Project) *entityForm {
	f := &entityForm{section: SectionProjects, title: "New project"}
	var tech, repo, live, image, title, desc string
	var featured bool
	if p != nil {
		f.editing, f.id, f.title = true, p.ID, "Edit project"
		title, desc = p.Title, p.Description
		tech = strings.Join(p.Tech, ", ")
		repo, live, image, featured = p.RepoURL, p.LiveURL, p.ImageURL, p.Featured
	}
	f.fields = []formField{
		newField("title", "Title", fieldText, true, title),
		newField("description", "Description", fieldText, true, desc),
		newField("tech", "Tech (comma-separated)", fieldList, false, tech),
		newField("repo_url", "Repo URL", fieldURL, false, repo),
		newField("live_url", "Live URL", fieldURL, false, live),
		newField("image_url", "Image URL", fieldURL, false, image),
		newBoolField("featured", "Featured", featured),
	}
	f.finish()
	return f
}

func newCertificateForm(c *model.Certificate) *entityForm {
	f := &entityForm{section: SectionCertificates, title: "New certificate"}
	var title, issuer, credURL, issued string
	if c != nil {
		f.editing, f.id, f.title = true, c.ID, "Edit certificate"
		title, issuer, credURL = c.Title, c.Issuer, c.CredentialURL
		issued = c.IssuedAt.Format(dateLayout)
	}
	f.fields = []formField{
		newField("title", "Title", fieldText, true, title),
		newField("issuer", "Issuer", fieldText, true, issuer),
		newField("credential_url", "Credential URL", fieldURL, false, credURL),
		newField("issued_at", "Issued (YYYY-MM-DD)", fieldDate, true, issued),
	}
	f.finish()
	return f
}

func newTimelineForm(t *model.TimelineItem) *entityForm {
	f := &entityForm{section: SectionTimeline, title: "New timeline entry"}
	var title, org, desc, start, end string
	if t != nil {
		f.editing, f.id, f.title = true, t.ID, "Edit timeline entry"
		title, org, desc = t.Title, t.Org, t.Description
		start = t.StartDate.Format(dateLayout)
		if t.EndDate != nil {
			end = t.EndDate.Format(dateLayout)
		}
	}
	f.fields = []formField{
		newField("title", "Title", fieldText, true, title),
		newField("org", "Organization", fieldText, true, org),
		newField("description", "Description", fieldText, false, desc),
		newField("start_date", "Start (YYYY-MM-DD)", fieldDate, true, start),
		newField("end_date", "End (YYYY-MM-DD, empty = ongoing)", fieldOptDate, false, end),
	}
	f.finish()
	return f
}

func newSkillForm(s *model.Skill) *entityForm {
	f := &entityForm{section: SectionSkills, title: "New skill"}
	var name, category, level string
	if s != nil {
		f.editing, f.id, f.title = true, s.ID, "Edit skill"
		name, category = s.Name, s.Category
		level = strconv.Itoa(s.Level)
	}
	f.fields = []formField{
		newField("name", "Name", fieldText, true, name),
		newField("category", "Category", fieldText, true, category),
		newField("level", "Level (0-100)", fieldInt, true, level),
	}
	f.finish()
	return f
}

// validate checks every field and returns the first problem found.
func (f *entityForm) validate() error {
	for i := range f.fields {
		fld := &f.fields[i]
		val := strings.TrimSpace(fld.input.Value())
		if fld.required && fld.kind != fieldBool && val == "" {
			return fmt.Errorf("%s is required", fld.label)
		}
		switch fld.kind {
		case fieldInt:
			if val == "" {
				continue
			}
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%s must be a number", fld.label)
			}
			if n < 0 || n > 100 {
				return fmt.Errorf("%s must be between 0 and 100", fld.label)
			}
		case fieldDate:
			if _, err := time.Parse(dateLayout, val); err != nil {
				return fmt.Errorf("%s must be a YYYY-MM-DD date", fld.label)
			}
		case fieldOptDate:
			if val == "" {
				continue
			}
			if _, err := time.Parse(dateLayout, val); err != nil {
				return fmt.Errorf("%s must be a YYYY-MM-DD date", fld.label)
			}
		case fieldURL:
			if val == "" {
				continue
			}
			u, err := url.Parse(val)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("%s must be an http(s) URL", fld.label)
			}
		}
	}

	if f.section == SectionTimeline {
		start, _ := time.Parse(dateLayout, f.value("start_date"))
		if end := f.value("end_date"); end != "" {
			e, _ := time.Parse(dateLayout, end)
			if e.Before(start) {
				return fmt.Errorf("end date must not be before start date")
			}
		}
	}
	return nil
}

func (f *entityForm) parseList(key string) []string {
	raw := f.value(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// saveCmd validates the form and fires the create or update request.
// Returns nil with an in-form error message when validation fails.
func (m *Model) saveFormCmd() tea.Cmd {
	f := m.form
	if err := f.validate(); err != nil {
		f.errMsg = err.Error()
		return nil
	}
	f.errMsg = ""

	verb := "created"
	if f.editing {
		verb = "updated"
	}

	switch f.section {
	case SectionProjects:
		record := model.Project{
			ID:          f.id,
			Title:       f.value("title"),
			Description: f.value("description"),
			Tech:        f.parseList("tech"),
			RepoURL:     f.value("repo_url"),
			LiveURL:     f.value("live_url"),
			ImageURL:    f.value("image_url"),
			Featured:    f.boolValue("featured"),
		}
		return saveRecordCmd(m, f, verb, model.EntityProjects, record)

	case SectionCertificates:
		issued, _ := time.Parse(dateLayout, f.value("issued_at"))
		record := model.Certificate{
			ID:            f.id,
			Title:         f.value("title"),
			Issuer:        f.value("issuer"),
			CredentialURL: f.value("credential_url"),
			IssuedAt:      issued,
		}
		return saveRecordCmd(m, f, verb, model.EntityCertificates, record)

	case SectionTimeline:
		start, _ := time.Parse(dateLayout, f.value("start_date"))
		var end *time.Time
		if raw := f.value("end_date"); raw != "" {
			e, _ := time.Parse(dateLayout, raw)
			end = &e
		}
		record := model.TimelineItem{
			ID:          f.id,
			Title:       f.value("title"),
			Org:         f.value("org"),
			Description: f.value("description"),
			StartDate:   start,
			EndDate:     end,
		}
		return saveRecordCmd(m, f, verb, model.EntityTimeline, record)

	default:
		level, _ := strconv.Atoi(f.value("level"))
		record := model.Skill{
			ID:       f.id,
			Name:     f.value("name"),
			Category: f.value("category"),
			Level:    level,
		}
		return saveRecordCmd(m, f, verb, model.EntitySkills, record)
	}
}

func saveRecordCmd[T any](m *Model, f *entityForm, verb, entity string, record T) tea.Cmd {
	client := m.client
	section, editing, id := f.section, f.editing, f.id
	return func() tea.Msg {
		ctx, cancel := apiContext()
		defer cancel()
		var err error
		if editing {
			_, err = api.Update(ctx, client, entity, id, record)
		} else {
			_, err = api.Create(ctx, client, entity, record)
		}
		return mutationDoneMsg{section: section, verb: verb, err: err}
	}
}

// handleFormKey drives focus and editing inside the form. Returns a
// non-nil cmd when the form submits.
func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	f := m.form
	switch msg.String() {
	case "esc":
		m.form = nil
		m.mode = ModeNormal
		return nil

	case "tab", "down", "enter":
		if msg.String() == "enter" && f.focus == len(f.fields)-1 {
			return m.submitForm()
		}
		f.moveFocus(1)
		return nil

	case "shift+tab", "up":
		f.moveFocus(-1)
		return nil

	case "ctrl+s":
		return m.submitForm()

	case " ":
		if f.fields[f.focus].kind == fieldBool {
			f.fields[f.focus].boolVal = !f.fields[f.focus].boolVal
			return nil
		}
	}

	if f.fields[f.focus].kind != fieldBool {
		var cmd tea.Cmd
		f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) submitForm() tea.Cmd {
	f := m.form
	if f.editing && !f.dirty() {
		m.form = nil
		m.mode = ModeNormal
		m.message = "No changes."
		return nil
	}
	cmd := m.saveFormCmd()
	if cmd == nil {
		return nil // validation error shown in the form
	}
	return cmd
}

func (f *entityForm) moveFocus(delta int) {
	if cur := &f.fields[f.focus]; cur.kind != fieldBool {
		cur.input.Blur()
	}
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	if next := &f.fields[f.focus]; next.kind != fieldBool {
		next.input.Focus()
	}
}
