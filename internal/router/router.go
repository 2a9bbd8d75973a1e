// Package router wires HTTP routes to handlers and applies per-group
// middleware: the admission gate on public submissions, the response cache on
// public catalog reads and API-key auth on operator routes.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/plzdj/plz-api/internal/config"
	"github.com/plzdj/plz-api/internal/handler"
	"github.com/plzdj/plz-api/internal/middleware"
	"github.com/plzdj/plz-api/internal/repository"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	APIKey    *handler.APIKeyHandler
	Catalog   *handler.CatalogHandler
	Song      *handler.SongHandler
	Request   *handler.RequestHandler
	Ticket    *handler.TicketHandler
	Blocklist *handler.BlocklistHandler
}

// RegisterRoutes registers routes that carry no middleware: the health check
// and key issuance (issuance is open, as in the original deployment; gate it
// with network policy if the service is exposed directly).
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)
	e.GET("/api/key", h.APIKey.NewAPIKey)
}

// RegisterPublic registers the unauthenticated browse and submission routes.
// Browse reads go through the Redis response cache; submissions pass the
// blocklist + rate-window admission gate first.
func RegisterPublic(e *echo.Echo, h Handlers, blocklist *repository.BlocklistRepo, tickets *repository.TicketRepo, cacheCfg config.CacheConfig, rdb *redis.Client) {
	browse := e.Group("/v1", middleware.ResponseCache(cacheCfg, rdb))
	browse.GET("/shows", h.Catalog.GetShows)
	browse.GET("/shows/:id/crates", h.Catalog.GetShowCrates)
	browse.GET("/shows/:id/artists", h.Catalog.GetShowArtists)
	browse.GET("/shows/:id/songs", h.Catalog.GetShowSongs)
	browse.GET("/crates", h.Catalog.GetCrates)

	submit := e.Group("/v1/requests", middleware.Admission(blocklist, tickets))
	submit.POST("/selected", h.Request.SubmitSelected)
	submit.POST("/freeform", h.Request.SubmitFreeform)
}

// RegisterOperator registers the API-key-gated write and ticket routes.
func RegisterOperator(e *echo.Echo, h Handlers, creds *repository.CredentialRepo) {
	op := e.Group("/v1", middleware.APIKeyAuth(creds))
	op.POST("/songs", h.Song.AddSong)
	op.POST("/shows", h.Catalog.CreateShow)
	op.POST("/crates", h.Catalog.CreateCrate)
	op.POST("/shows/:id/crates", h.Catalog.AssociateCrates)
	op.POST("/blocklist", h.Blocklist.Block)
	op.GET("/tickets", h.Ticket.GetTickets)
	op.GET("/tickets/unprinted", h.Ticket.GetUnprinted)
	op.GET("/tickets/:id", h.Ticket.GetTicket)
	op.POST("/tickets/:id/printed", h.Ticket.MarkPrinted)
}
