package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plzdj/plz-api/internal/repository"
	"github.com/plzdj/plz-api/internal/utils"
)

// APIKeyHandler issues API credentials.
type APIKeyHandler struct {
	Creds *repository.CredentialRepo
}

func NewAPIKeyHandler(creds *repository.CredentialRepo) *APIKeyHandler {
	return &APIKeyHandler{Creds: creds}
}

type apiKeyResp struct {
	CredentialID string `json:"credential_id"`
	Secret       string `json:"secret"`
}

// NewAPIKey generates a fresh credential and returns the id together with the
// one-time plaintext secret. The secret is hashed with argon2id before
// storage and the hash is self-checked (verify plus needs-rehash) before the
// insert, so a hashing malfunction can never persist an unverifiable
// credential.
func (h *APIKeyHandler) NewAPIKey(c echo.Context) error {
	secret, err := utils.NewSecret()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "secret generation failed"})
	}
	hash, err := utils.HashSecret(secret)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hashing failed"})
	}

	// Round-trip self-check before anything is persisted.
	if !utils.VerifySecret(hash, secret) || utils.NeedsRehash(hash) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash verification failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Creds.Create(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store credential"})
	}

	return c.JSON(http.StatusOK, apiKeyResp{CredentialID: id, Secret: secret})
}
