// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nrs-dev/nrs-webapp/internal/middleware"
	"github.com/nrs-dev/nrs-webapp/internal/models"
	"github.com/nrs-dev/nrs-webapp/internal/views"
)

type entryForm struct {
	Title string `form:"title" validate:"required,max=200"`
	Kind  string `form:"kind" validate:"required"`
}

// Entries renders the entry list. The list is public; adding requires a
// session.
func (h *Handlers) Entries(c echo.Context) error {
	entries, err := h.repo.ListEntries(c.Request().Context())
	if err != nil {
		return err
	}
	canAdd := middleware.CurrentUser(c) != nil
	return Render(c, http.StatusOK, views.Entries(csrfToken(c), canAdd, entries))
}

// EntryCreate adds an entry and re-renders the list.
func (h *Handlers) EntryCreate(c echo.Context) error {
	var form entryForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing title or kind")
	}
	if err := c.Validate(&form); err != nil {
		return err
	}
	if !models.ValidEntryKind(form.Kind) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown entry kind")
	}

	entry := &models.Entry{Title: form.Title, Kind: form.Kind}
	if err := h.repo.CreateEntry(c.Request().Context(), entry); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/entries")
}
