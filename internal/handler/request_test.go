package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plzdj/plz-api/internal/repository"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func jsonContext(e *echo.Echo, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	bs, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(string(bs)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSubmitSelectedHoneypotWritesNothing(t *testing.T) {
	db, mock := newMock(t)
	h := NewRequestHandler(repository.NewTicketRepo(db))
	e := echo.New()

	c, rec := jsonContext(e, "/v1/requests/selected", map[string]string{
		"show_id":      "1",
		"song_id":      "not even a uuid",
		"submitted_by": "bot",
		"email":        "bot@example.com",
	})

	require.NoError(t, h.SubmitSelected(c))

	// Success-shaped response with a plausible ticket id, zero queries.
	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	_, err := uuid.Parse(resp["ticket_id"])
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitSelectedRejectsMalformedSongID(t *testing.T) {
	db, mock := newMock(t)
	h := NewRequestHandler(repository.NewTicketRepo(db))
	e := echo.New()

	c, rec := jsonContext(e, "/v1/requests/selected", map[string]string{
		"show_id":      "1",
		"song_id":      "not-a-uuid",
		"submitted_by": "Zoe",
	})

	require.NoError(t, h.SubmitSelected(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitSelectedRejectsMalformedShowID(t *testing.T) {
	db, mock := newMock(t)
	h := NewRequestHandler(repository.NewTicketRepo(db))
	e := echo.New()

	c, rec := jsonContext(e, "/v1/requests/selected", map[string]string{
		"show_id":      "first",
		"song_id":      "0c1d6ea1-5f7a-4f58-9c5c-0d9e9f6f21aa",
		"submitted_by": "Zoe",
	})

	require.NoError(t, h.SubmitSelected(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitFreeformRequiresFields(t *testing.T) {
	db, mock := newMock(t)
	h := NewRequestHandler(repository.NewTicketRepo(db))
	e := echo.New()

	for name, body := range map[string]map[string]string{
		"missing submitter": {"show_id": "1", "artist_name": "X", "song_title": "Y"},
		"missing artist":    {"show_id": "1", "song_title": "Y", "submitted_by": "Zoe"},
		"missing title":     {"show_id": "1", "artist_name": "X", "submitted_by": "Zoe"},
	} {
		c, rec := jsonContext(e, "/v1/requests/freeform", body)
		require.NoError(t, h.SubmitFreeform(c), name)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitFreeformStoresTicket(t *testing.T) {
	db, mock := newMock(t)
	h := NewRequestHandler(repository.NewTicketRepo(db))
	e := echo.New()

	const ticketID = "a3a1f2dd-4f0a-44a5-93b3-84d4a1e52f10"
	mock.ExpectBegin()
	// reverse_dns depends on the test environment's resolver.
	mock.ExpectQuery("INSERT INTO ticket").
		WithArgs(int64(1), "Zoe", "192.0.2.1", sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id"}).AddRow(ticketID))
	mock.ExpectExec("INSERT INTO freeform_request").
		WithArgs(ticketID, "X", "Y").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := jsonContext(e, "/v1/requests/freeform", map[string]string{
		"show_id":      "1",
		"artist_name":  "X",
		"song_title":   "Y",
		"submitted_by": "Zoe",
	})

	require.NoError(t, h.SubmitFreeform(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), ticketID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizeSubmitterTruncates(t *testing.T) {
	long := strings.Repeat("a", 200)
	requestedBy, notes, err := normalizeSubmitter(long, strings.Repeat("n", 600))
	require.NoError(t, err)

	assert.Len(t, requestedBy, maxRequestedByLen)
	require.NotNil(t, notes)
	assert.Len(t, *notes, maxNotesLen)
}

func TestNormalizeSubmitterEmpty(t *testing.T) {
	_, _, err := normalizeSubmitter("   ", "")
	assert.Error(t, err)

	requestedBy, notes, err := normalizeSubmitter("Zoe", "   ")
	require.NoError(t, err)
	assert.Equal(t, "Zoe", requestedBy)
	assert.Nil(t, notes)
}

func TestTruncateRespectsRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo", 10))
	assert.Equal(t, "hél", truncate("héllo", 3))
}
