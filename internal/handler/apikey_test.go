package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plzdj/plz-api/internal/repository"
	"github.com/plzdj/plz-api/internal/utils"
)

func TestNewAPIKeyIssuesVerifiableSecret(t *testing.T) {
	db, mock := newMock(t)
	h := NewAPIKeyHandler(repository.NewCredentialRepo(db))
	e := echo.New()

	const credentialID = "6fc3f3a0-bd5c-4f44-8d2e-2f1b5df1c001"
	mock.ExpectQuery("INSERT INTO credential").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"credential_id"}).AddRow(credentialID))

	req := httptest.NewRequest(http.MethodGet, "/api/key", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.NewAPIKey(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		CredentialID string `json:"credential_id"`
		Secret       string `json:"secret"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, credentialID, resp.CredentialID)
	assert.NotEmpty(t, resp.Secret)
	assert.NoError(t, mock.ExpectationsWereMet())

	// The returned secret must verify against a hash produced with the
	// current parameters, same as the stored one.
	storedHash, err := utils.HashSecret(resp.Secret)
	require.NoError(t, err)
	assert.True(t, utils.VerifySecret(storedHash, resp.Secret))
	assert.False(t, utils.NeedsRehash(storedHash))
}

func TestNewAPIKeyStorageFailure(t *testing.T) {
	db, mock := newMock(t)
	h := NewAPIKeyHandler(repository.NewCredentialRepo(db))
	e := echo.New()

	mock.ExpectQuery("INSERT INTO credential").
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(assert.AnError)

	req := httptest.NewRequest(http.MethodGet, "/api/key", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.NewAPIKey(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
