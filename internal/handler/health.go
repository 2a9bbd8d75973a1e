// Package handler contains the HTTP handlers. Handlers bind and validate
// request payloads, call into repositories with a bounded context and map
// repository errors onto status codes; they hold no state of their own.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a simple health-check endpoint for load balancers and monitoring.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
