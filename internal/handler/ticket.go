package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/plzdj/plz-api/internal/model"
	"github.com/plzdj/plz-api/internal/repository"
)

// TicketHandler serves the operator's ticket queries and the printed-flag
// transition.
type TicketHandler struct {
	Tickets *repository.TicketRepo
}

func NewTicketHandler(tickets *repository.TicketRepo) *TicketHandler {
	return &TicketHandler{Tickets: tickets}
}

// intervalPattern guards the relative-lookback filter before it reaches the
// ::interval cast, e.g. "2 hours" or "45 minutes".
var intervalPattern = regexp.MustCompile(`(?i)^\d+\s+(second|minute|hour|day|week|month|year)s?$`)

// timezone returns the tz query parameter, defaulting to UTC. Validity is
// checked by the repository against the database's timezone list.
func timezone(c echo.Context) string {
	if tz := c.QueryParam("tz"); tz != "" {
		return tz
	}
	return "UTC"
}

// GetUnprinted returns all tickets not yet printed, oldest first.
func (h *TicketHandler) GetUnprinted(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, err := h.Tickets.GetUnprinted(ctx, timezone(c))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTimezone) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown timezone"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(tickets) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "no unprinted tickets"})
	}
	return c.JSON(http.StatusOK, tickets)
}

// GetTicket returns a single ticket by id. A malformed id is a 400, distinct
// from 404 for a well-formed id with no row.
func (h *TicketHandler) GetTicket(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket id must be a UUID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ticket, err := h.Tickets.GetByID(ctx, id.String(), timezone(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidTimezone):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown timezone"})
		case errors.Is(err, repository.ErrTicketNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, ticket)
}

// GetTickets returns tickets matching the optional conjunctive filters
// interval, show_id, ip and requested_by, newest first.
func (h *TicketHandler) GetTickets(c echo.Context) error {
	var f repository.TicketFilter

	if s := c.QueryParam("interval"); s != "" {
		if !intervalPattern.MatchString(s) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "interval must look like '2 hours'"})
		}
		f.Interval = &s
	}
	if s := c.QueryParam("show_id"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_id must be an integer"})
		}
		f.ShowID = &n
	}
	if s := c.QueryParam("ip"); s != "" {
		f.IP = &s
	}
	if s := c.QueryParam("requested_by"); s != "" {
		f.RequestedBy = &s
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, err := h.Tickets.List(ctx, timezone(c), f)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTimezone) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown timezone"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if tickets == nil {
		tickets = []model.Ticket{}
	}
	return c.JSON(http.StatusOK, tickets)
}

// MarkPrinted transitions a ticket to printed. Re-marking an already printed
// ticket succeeds with the same response.
func (h *TicketHandler) MarkPrinted(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket id must be a UUID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tickets.MarkPrinted(ctx, id.String()); err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket_id": id.String(), "printed": true})
}
