// Package middleware contains reusable HTTP middleware: API-key
// authentication for operator routes, the admission gate for public
// submissions and a Redis response cache for catalog reads.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plzdj/plz-api/internal/repository"
	"github.com/plzdj/plz-api/internal/utils"
)

// Header names carrying the API credential. The id is public, the secret is
// the one-time value handed out at issuance.
const (
	HeaderAPIKeyID     = "X-API-Key-ID"
	HeaderAPIKeySecret = "X-API-Key-Secret"
)

// APIKeyAuth returns an Echo middleware that verifies the credential headers
// against the stored argon2id hash. Verification fails closed: missing
// headers, unknown or deactivated credentials and hash mismatches all yield
// the same 401 so the response does not reveal which part failed.
func APIKeyAuth(creds *repository.CredentialRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderAPIKeyID)
			secret := c.Request().Header.Get(HeaderAPIKeySecret)
			if id == "" || secret == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing api key"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			hash, err := creds.GetActiveHash(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrCredentialNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid api key"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "credential lookup failed"})
			}
			if !utils.VerifySecret(hash, secret) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid api key"})
			}

			// Expose the verified credential to handlers that want to log it.
			c.Set("credential_id", id)
			return next(c)
		}
	}
}
