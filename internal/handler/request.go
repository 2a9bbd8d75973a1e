package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/plzdj/plz-api/internal/model"
	"github.com/plzdj/plz-api/internal/queue"
	"github.com/plzdj/plz-api/internal/repository"
	queue_publisher "github.com/plzdj/plz-api/internal/service"
	"github.com/plzdj/plz-api/internal/utils"
)

// Field caps applied to submissions. Oversized values are truncated, not
// rejected; the caps match the column widths.
const (
	maxRequestedByLen = 128
	maxNotesLen       = 512
	maxArtistNameLen  = 128
	maxSongTitleLen   = 256
)

// RequestHandler accepts the two public song-request variants. The admission
// middleware (blocklist + rate windows) runs before these handlers.
type RequestHandler struct {
	Tickets *repository.TicketRepo
}

func NewRequestHandler(tickets *repository.TicketRepo) *RequestHandler {
	return &RequestHandler{Tickets: tickets}
}

// Submission fields arrive as strings (the public form posts them that way);
// identifiers are parsed here. Email is a honeypot: the rendered form never
// shows it, so any filled value is a bot signature.
type selectedReq struct {
	ShowID      string `json:"show_id" form:"show_id"`
	SongID      string `json:"song_id" form:"song_id"`
	SubmittedBy string `json:"submitted_by" form:"submitted_by"`
	Notes       string `json:"notes" form:"notes"`
	Email       string `json:"email" form:"email"`
}

type freeformReq struct {
	ShowID      string `json:"show_id" form:"show_id"`
	ArtistName  string `json:"artist_name" form:"artist_name"`
	SongTitle   string `json:"song_title" form:"song_title"`
	SubmittedBy string `json:"submitted_by" form:"submitted_by"`
	Notes       string `json:"notes" form:"notes"`
	Email       string `json:"email" form:"email"`
}

// SubmitSelected accepts a request for a song picked from the catalog.
func (h *RequestHandler) SubmitSelected(c echo.Context) error {
	var req selectedReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) != "" {
		return honeypotResponse(c)
	}

	showID, err := strconv.ParseInt(req.ShowID, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_id must be an integer"})
	}
	songID, err := uuid.Parse(req.SongID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "song_id must be a UUID"})
	}
	requestedBy, notes, err := normalizeSubmitter(req.SubmittedBy, req.Notes)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "submitted_by required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ip := c.RealIP()
	reverseDNS := utils.LookupReverseDNS(ctx, ip)

	ticketID, err := h.Tickets.CreateSelected(ctx, showID, songID.String(), requestedBy, ip, reverseDNS, notes)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store request"})
	}

	publishTicketCreated(queue.TicketCreatedEvent{
		TicketID:    ticketID,
		ShowID:      showID,
		RequestType: model.RequestTypeSelected,
		RequestedBy: requestedBy,
		SongID:      songID.String(),
		IPAddress:   ip,
		RequestedAt: time.Now().UTC().Format("2006-01-02 15:04:05"),
	})

	return c.JSON(http.StatusCreated, echo.Map{"ticket_id": ticketID})
}

// SubmitFreeform accepts a free-text request for a song that may not be in
// the catalog.
func (h *RequestHandler) SubmitFreeform(c echo.Context) error {
	var req freeformReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) != "" {
		return honeypotResponse(c)
	}

	showID, err := strconv.ParseInt(req.ShowID, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_id must be an integer"})
	}
	artistName := strings.TrimSpace(req.ArtistName)
	songTitle := strings.TrimSpace(req.SongTitle)
	if artistName == "" || songTitle == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "artist_name/song_title required"})
	}
	artistName = truncate(artistName, maxArtistNameLen)
	songTitle = truncate(songTitle, maxSongTitleLen)
	requestedBy, notes, err := normalizeSubmitter(req.SubmittedBy, req.Notes)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "submitted_by required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ip := c.RealIP()
	reverseDNS := utils.LookupReverseDNS(ctx, ip)

	ticketID, err := h.Tickets.CreateFreeform(ctx, showID, artistName, songTitle, requestedBy, ip, reverseDNS, notes)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store request"})
	}

	publishTicketCreated(queue.TicketCreatedEvent{
		TicketID:    ticketID,
		ShowID:      showID,
		RequestType: model.RequestTypeFreeform,
		RequestedBy: requestedBy,
		ArtistName:  artistName,
		SongTitle:   songTitle,
		IPAddress:   ip,
		RequestedAt: time.Now().UTC().Format("2006-01-02 15:04:05"),
	})

	return c.JSON(http.StatusCreated, echo.Map{"ticket_id": ticketID})
}

// honeypotResponse reports success without touching the database. Returning
// a plausible ticket id keeps the trap invisible to the bot that sprang it.
func honeypotResponse(c echo.Context) error {
	return c.JSON(http.StatusCreated, echo.Map{"ticket_id": uuid.NewString()})
}

// normalizeSubmitter trims and caps the shared submitter fields. An empty
// submitter is an error; empty notes become nil.
func normalizeSubmitter(submittedBy, notes string) (string, *string, error) {
	submittedBy = strings.TrimSpace(submittedBy)
	if submittedBy == "" {
		return "", nil, errEmptySubmitter
	}
	submittedBy = truncate(submittedBy, maxRequestedByLen)

	notes = strings.TrimSpace(notes)
	if notes == "" {
		return submittedBy, nil, nil
	}
	capped := truncate(notes, maxNotesLen)
	return submittedBy, &capped, nil
}

var errEmptySubmitter = errors.New("submitted_by required")

// truncate caps s at n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// publishTicketCreated hands the event to the broker in the background.
// Publishing is best-effort: a broker outage must not fail or slow the
// submission.
func publishTicketCreated(ev queue.TicketCreatedEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishTicketCreated(ctx, ev)
	}()
}
