package server

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/folioworks/folio/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
)

// Projects

func (s *Server) handleListProjects(c echo.Context) error {
	rows, err := s.db.Query(`
		SELECT id, title, description, tech, repo_url, live_url, image_url, featured, created_at, updated_at
		FROM projects ORDER BY featured DESC, created_at DESC`)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, pq.Array(&p.Tech),
			&p.RepoURL, &p.LiveURL, &p.ImageURL, &p.Featured, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return fail(c, http.StatusInternalServerError, "internal error")
		}
		projects = append(projects, p)
	}

	return ok(c, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var p model.Project
	if err := c.Bind(&p); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if p.Title == "" {
		return fail(c, http.StatusBadRequest, "title required")
	}

	err := s.db.QueryRow(`
		INSERT INTO projects (title, description, tech, repo_url, live_url, image_url, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		p.Title, p.Description, pq.Array(p.Tech), p.RepoURL, p.LiveURL, p.ImageURL, p.Featured,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	return ok(c, http.StatusCreated, p)
}

func (s *Server) handleUpdateProject(c echo.Context) error {
	var p model.Project
	if err := c.Bind(&p); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if p.Title == "" {
		return fail(c, http.StatusBadRequest, "title required")
	}

	p.ID = c.Param("id")
	err := s.db.QueryRow(`
		UPDATE projects
		SET title = $1, description = $2, tech = $3, repo_url = $4, live_url = $5,
		    image_url = $6, featured = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING created_at, updated_at`,
		p.Title, p.Description, pq.Array(p.Tech), p.RepoURL, p.LiveURL, p.ImageURL, p.Featured, p.ID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fail(c, http.StatusNotFound, "project not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	return ok(c, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(c echo.Context) error {
	return s.deleteByID(c, "projects", "project")
}

// Certificates

func (s *Server) handleListCertificates(c echo.Context) error {
	rows, err := s.db.Query(`
		SELECT id, title, issuer, credential_url, issued_at, created_at, updated_at
		FROM certificates ORDER BY issued_at DESC`)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}
	defer rows.Close()

	certs := []model.Certificate{}
	for rows.Next() {
		var cert model.Certificate
		if err := rows.Scan(&cert.ID, &cert.Title, &cert.Issuer, &cert.CredentialURL,
			&cert.IssuedAt, &cert.CreatedAt, &cert.UpdatedAt); err != nil {
			return fail(c, http.StatusInternalServerError, "internal error")
		}
		certs = append(certs, cert)
	}

	return ok(c, http.StatusOK, certs)
}

func (s *Server) handleCreateCertificate(c echo.Context) error {
	var cert model.Certificate
	if err := c.Bind(&cert); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if cert.Title == "" || cert.IssuedAt.IsZero() {
		return fail(c, http.StatusBadRequest, "title and issued_at required")
	}

	err := s.db.QueryRow(`
		INSERT INTO certificates (title, issuer, credential_url, issued_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		cert.Title, cert.Issuer, cert.CredentialURL, cert.IssuedAt,
	).Scan(&cert.ID, &cert.CreatedAt, &cert.UpdatedAt)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	return ok(c, http.StatusCreated, cert)
}

func (s *Server) handleUpdateCertificate(c echo.Context) error {
	var cert model.Certificate
	if err := c.Bind(&cert); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if cert.Title == "" || cert.IssuedAt.IsZero() {
		return fail(c, http.StatusBadRequest, "title and issued_at required")
	}

	cert.ID = c.Param("id")
	err := s.db.QueryRow(`
		UPDATE certificates
		SET title = $1, issuer = $2, credential_url = $3, issued_at = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING created_at, updated_at`,
		cert.Title, cert.Issuer, cert.CredentialURL, cert.IssuedAt, cert.ID,
	).Scan(&cert.CreatedAt, &cert.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fail(c, http.StatusNotFound, "certificate not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	return ok(c, http.StatusOK, cert)
}

func (s *Server) handleDeleteCertificate(c echo.Context) error {
	return s.deleteByID(c, "certificates", "certificate")
}

// Timeline

func (s *Server) handleListTimeline(c echo.Context) error {
	rows, err := s.db.Query(`
		SELECT id, title, org, description, start_date, end_date, created_at, updated_at
		FROM timeline_items ORDER BY start_date DESC`)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}
	defer rows.Close()

	items := []model.TimelineItem{}
	for rows.Next() {
		var item model.TimelineItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Org, &item.Description,
			&item.StartDate, &item.EndDate, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return fail(c, http.StatusInternalServerError, "internal error")
		}
		items = append(items, item)
	}

	return ok(c, http.StatusOK, items)
}

func validateTimelineItem(item *model.TimelineItem) string {
	if item.Title == "" || item.StartDate.IsZero() {
		return "title and start_date required"
	}
	if item.EndDate != nil && item.EndDate.Before(item.StartDate) {
		return "end_date must not precede start_date"
	}
	return ""
}

func (s *Server) handleCreateTimelineItem(c echo.Context) error {
	var item model.TimelineItem
	if err := c.Bind(&item); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if msg := validateTimelineItem(&item); msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}

	err := s.db.QueryRow(`
		INSERT INTO timeline_items (title, org, description, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		item.Title, item.Org, item.Description, item.StartDate, item.EndDate,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	return ok(c, http.StatusCreated, item)
}

func (s *Server) handleUpdateTimelineItem(c echo.Context) error {
	var item model.TimelineItem
	if err := c.Bind(&item); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if msg := validateTimelineItem(&item); msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}

	item.ID = c.Param("id")
	err := s.db.QueryRow(`
		UPDATE timeline_items
		SET title = $1, org = $2, description = $3, start_date = $4, end_date = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING created_at, updated_at`,
		item.Title, item.Org, item.Description, item.StartDate, item.EndDate, item.ID,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fail(c, http.StatusNotFound, "timeline item not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	return ok(c, http.StatusOK, item)
}

func (s *Server) handleDeleteTimelineItem(c echo.Context) error {
	return s.deleteByID(c, "timeline_items", "timeline item")
}

// Skills

func (s *Server) handleListSkills(c echo.Context) error {
	rows, err := s.db.Query(`
		SELECT id, name, category, level, created_at, updated_at
		FROM skills ORDER BY category, name`)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}
	defer rows.Close()

	skills := []model.Skill{}
	for rows.Next() {
		var sk model.Skill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.Category, &sk.Level,
			&sk.CreatedAt, &sk.UpdatedAt); err != nil {
			return fail(c, http.StatusInternalServerError, "internal error")
		}
		skills = append(skills, sk)
	}

	return ok(c, http.StatusOK, skills)
}

func (s *Server) handleCreateSkill(c echo.Context) error {
	var sk model.Skill
	if err := c.Bind(&sk); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if sk.Name == "" || sk.Level < 0 || sk.Level > 100 {
		return fail(c, http.StatusBadRequest, "name required, level must be 0-100")
	}

	err := s.db.QueryRow(`
		INSERT INTO skills (name, category, level)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		sk.Name, sk.Category, sk.Level,
	).Scan(&sk.ID, &sk.CreatedAt, &sk.UpdatedAt)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	return ok(c, http.StatusCreated, sk)
}

func (s *Server) handleUpdateSkill(c echo.Context) error {
	var sk model.Skill
	if err := c.Bind(&sk); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if sk.Name == "" || sk.Level < 0 || sk.Level > 100 {
		return fail(c, http.StatusBadRequest, "name required, level must be 0-100")
	}

	sk.ID = c.Param("id")
	err := s.db.QueryRow(`
		UPDATE skills
		SET name = $1, category = $2, level = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING created_at, updated_at`,
		sk.Name, sk.Category, sk.Level, sk.ID,
	).Scan(&sk.CreatedAt, &sk.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fail(c, http.StatusNotFound, "skill not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	return ok(c, http.StatusOK, sk)
}

func (s *Server) handleDeleteSkill(c echo.Context) error {
	return s.deleteByID(c, "skills", "skill")
}

// deleteByID removes one row from the named table. The table name is
// always one of our own constants, never caller input.
func (s *Server) deleteByID(c echo.Context, tableName, label string) error {
	res, err := s.db.Exec(`DELETE FROM `+tableName+` WHERE id = $1`, c.Param("id"))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fail(c, http.StatusNotFound, label+" not found")
	}
	return ok(c, http.StatusOK, nil)
}
