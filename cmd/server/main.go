package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/plzdj/plz-api/internal/config"
	"github.com/plzdj/plz-api/internal/database"
	"github.com/plzdj/plz-api/internal/handler"
	"github.com/plzdj/plz-api/internal/queue"
	"github.com/plzdj/plz-api/internal/repository"
	"github.com/plzdj/plz-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, response cache disabled")
	}

	creds := repository.NewCredentialRepo(db)
	blocklist := repository.NewBlocklistRepo(db)
	catalog := repository.NewCatalogRepo(db)
	songs := repository.NewSongRepo(db)
	tickets := repository.NewTicketRepo(db)

	h := router.Handlers{
		APIKey:    handler.NewAPIKeyHandler(creds),
		Catalog:   handler.NewCatalogHandler(catalog),
		Song:      handler.NewSongHandler(catalog, songs),
		Request:   handler.NewRequestHandler(tickets),
		Ticket:    handler.NewTicketHandler(tickets),
		Blocklist: handler.NewBlocklistHandler(blocklist),
	}

	e := echo.New()
	router.RegisterRoutes(e, h)
	router.RegisterPublic(e, h, blocklist, tickets, config.LoadCacheConfig(), rdb)
	router.RegisterOperator(e, h, creds)

	// Background consumer records accepted submissions to logs/requests.log.
	go queue.StartTicketConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
