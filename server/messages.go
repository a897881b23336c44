package server

import (
	"net/http"
	"strings"

	"github.com/folioworks/folio/internal/model"
	"github.com/labstack/echo/v4"
)

// handleCreateMessage accepts a public contact-form submission.
func (s *Server) handleCreateMessage(c echo.Context) error {
	var msg model.ContactMessage
	if err := c.Bind(&msg); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if msg.Name == "" || msg.Body == "" {
		return fail(c, http.StatusBadRequest, "name and body required")
	}
	if !strings.Contains(msg.Email, "@") {
		return fail(c, http.StatusBadRequest, "valid email required")
	}

	err := s.db.QueryRow(`
		INSERT INTO contact_messages (name, email, subject, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		msg.Name, msg.Email, msg.Subject, msg.Body,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	return ok(c, http.StatusCreated, msg)
}

// handleListMessages returns the admin inbox, unread first.
func (s *Server) handleListMessages(c echo.Context) error {
	rows, err := s.db.Query(`
		SELECT id, name, email, subject, body, read, created_at
		FROM contact_messages ORDER BY read, created_at DESC`)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}
	defer rows.Close()

	messages := []model.ContactMessage{}
	for rows.Next() {
		var msg model.ContactMessage
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Subject,
			&msg.Body, &msg.Read, &msg.CreatedAt); err != nil {
			return fail(c, http.StatusInternalServerError, "internal error")
		}
		messages = append(messages, msg)
	}

	return ok(c, http.StatusOK, messages)
}

func (s *Server) handleMarkMessageRead(c echo.Context) error {
	res, err := s.db.Exec(`UPDATE contact_messages SET read = TRUE WHERE id = $1`, c.Param("id"))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "internal error")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fail(c, http.StatusNotFound, "message not found")
	}
	return ok(c, http.StatusOK, nil)
}

func (s *Server) handleDeleteMessage(c echo.Context) error {
	return s.deleteByID(c, "contact_messages", "message")
}
