package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plzdj/plz-api/internal/repository"
)

// Admission gates public submission endpoints. The blocklist check runs
// first and is terminal; the rate-limit check runs second so a blocked
// address never consumes a window query. The two rejections are deliberately
// distinguishable: 403 means permanent, 429 means try again later.
func Admission(blocklist *repository.BlocklistRepo, tickets *repository.TicketRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			blocked, err := blocklist.IsBlocked(ctx, ip)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "admission check failed"})
			}
			if blocked {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":   "blocked",
					"message": "this address is not allowed to submit requests",
				})
			}

			limited, err := tickets.IsRateLimited(ctx, ip)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "admission check failed"})
			}
			if limited {
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":   "too_many_requests",
					"message": "request limit reached, try again later",
				})
			}

			return next(c)
		}
	}
}
