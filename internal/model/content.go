package model

import "time"

// Entity names used in API paths, cache tables and fallback file names.
const (
	EntityProjects     = "projects"
	EntityCertificates = "certificates"
	EntityTimeline     = "timeline"
	EntitySkills       = "skills"
	EntityMessages     = "messages"
)

// Project is a portfolio project entry.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tech        []string  `json:"tech,omitempty"`
	RepoURL     string    `json:"repo_url,omitempty"`
	LiveURL     string    `json:"live_url,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Certificate is an earned certification or award.
type Certificate struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Issuer        string    `json:"issuer"`
	CredentialURL string    `json:"credential_url,omitempty"`
	IssuedAt      time.Time `json:"issued_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TimelineItem is a career/education timeline entry.
type TimelineItem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Org         string     `json:"org"`
	Description string     `json:"description,omitempty"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"` // nil = ongoing
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Current returns true if the entry has no end date yet.
func (t *TimelineItem) Current() bool {
	return t.EndDate == nil
}

// Skill is a single skill with a 0-100 proficiency level.
type Skill struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactMessage is an inbound message from the public contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
