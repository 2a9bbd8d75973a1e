package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTicketID = "a3a1f2dd-4f0a-44a5-93b3-84d4a1e52f10"
	testSongID   = "0c1d6ea1-5f7a-4f58-9c5c-0d9e9f6f21aa"
)

func ticketRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"ticket_id", "show_id", "requested_by", "ip_address", "reverse_dns", "notes",
		"requested_at", "printed", "request_type", "song_id", "song_title", "artist_name",
	})
}

func expectTimezoneOK(mock sqlmock.Sqlmock, tz string) {
	mock.ExpectQuery("pg_timezone_names").
		WithArgs(tz).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
}

func TestIsRateLimitedTripsOnFirstWindow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	// Three tickets inside the trailing minute: the check short-circuits and
	// never queries the longer windows.
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("192.0.2.1", "1 minute").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	limited, err := repo.IsRateLimited(context.Background(), "192.0.2.1")
	require.NoError(t, err)
	assert.True(t, limited)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsRateLimitedChecksAllWindows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	for _, interval := range []string{"1 minute", "1 hour", "1 day"} {
		mock.ExpectQuery("SELECT COUNT").
			WithArgs("192.0.2.1", interval).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	}

	limited, err := repo.IsRateLimited(context.Background(), "192.0.2.1")
	require.NoError(t, err)
	assert.False(t, limited)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsRateLimitedTripsOnDailyCap(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("192.0.2.1", "1 minute").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("192.0.2.1", "1 hour").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("192.0.2.1", "1 day").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(20))

	limited, err := repo.IsRateLimited(context.Background(), "192.0.2.1")
	require.NoError(t, err)
	assert.True(t, limited)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSelectedCommitsTicketAndVariant(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO ticket").
		WithArgs(int64(1), "Zoe", "192.0.2.1", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id"}).AddRow(testTicketID))
	mock.ExpectExec("INSERT INTO selected_request").
		WithArgs(testTicketID, testSongID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := repo.CreateSelected(context.Background(), 1, testSongID, "Zoe", "192.0.2.1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, testTicketID, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFreeformRollsBackWhenVariantInsertFails(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	// Ticket and variant appear together or not at all: a variant failure
	// rolls the ticket row back.
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO ticket").
		WithArgs(int64(1), "Zoe", "192.0.2.1", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id"}).AddRow(testTicketID))
	mock.ExpectExec("INSERT INTO freeform_request").
		WithArgs(testTicketID, "X", "Y").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := repo.CreateFreeform(context.Background(), 1, "X", "Y", "Zoe", "192.0.2.1", nil, nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUnprintedRejectsUnknownTimezone(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectQuery("pg_timezone_names").
		WithArgs("Mars/Olympus").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := repo.GetUnprinted(context.Background(), "Mars/Olympus")
	assert.ErrorIs(t, err, ErrInvalidTimezone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUnprintedReturnsTickets(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	expectTimezoneOK(mock, "Etc/UTC")
	mock.ExpectQuery("FROM request WHERE printed = false").
		WithArgs("Etc/UTC").
		WillReturnRows(ticketRows().
			AddRow(testTicketID, 1, "Zoe", "192.0.2.1", nil, nil,
				"2026-08-25 20:15:00", false, "freeform", nil, "Y", "X"))

	tickets, err := repo.GetUnprinted(context.Background(), "Etc/UTC")
	require.NoError(t, err)
	require.Len(t, tickets, 1)

	tk := tickets[0]
	assert.Equal(t, testTicketID, tk.ID)
	assert.Equal(t, "freeform", tk.RequestType)
	assert.Nil(t, tk.SongID)
	require.NotNil(t, tk.SongTitle)
	assert.Equal(t, "Y", *tk.SongTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	expectTimezoneOK(mock, "UTC")
	mock.ExpectQuery("FROM request WHERE ticket_id").
		WithArgs("UTC", testTicketID).
		WillReturnRows(ticketRows())

	_, err := repo.GetByID(context.Background(), testTicketID, "UTC")
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAppliesConjunctiveFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	interval := "2 hours"
	showID := int64(1)
	ip := "192.0.2.1"

	expectTimezoneOK(mock, "UTC")
	mock.ExpectQuery("FROM request WHERE requested_at").
		WithArgs("UTC", interval, showID, ip).
		WillReturnRows(ticketRows().
			AddRow(testTicketID, 1, "Zoe", ip, nil, nil,
				"2026-08-25 20:15:00", true, "selected", testSongID, "I Feel Love", "Donna Summer"))

	tickets, err := repo.List(context.Background(), "UTC", TicketFilter{
		Interval: &interval,
		ShowID:   &showID,
		IP:       &ip,
	})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "selected", tickets[0].RequestType)
	require.NotNil(t, tickets[0].SongID)
	assert.Equal(t, testSongID, *tickets[0].SongID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPrintedIsIdempotent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	// Postgres reports the row as affected on a re-mark, so both calls
	// succeed.
	mock.ExpectExec("UPDATE ticket SET printed").
		WithArgs(testTicketID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE ticket SET printed").
		WithArgs(testTicketID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkPrinted(context.Background(), testTicketID))
	require.NoError(t, repo.MarkPrinted(context.Background(), testTicketID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPrintedUnknownTicket(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectExec("UPDATE ticket SET printed").
		WithArgs(testTicketID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkPrinted(context.Background(), testTicketID)
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
