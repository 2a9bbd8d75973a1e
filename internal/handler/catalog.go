package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plzdj/plz-api/internal/repository"
)

// CatalogHandler exposes show and crate management plus the browse endpoints
// the public request form uses.
type CatalogHandler struct {
	Catalog *repository.CatalogRepo
}

func NewCatalogHandler(catalog *repository.CatalogRepo) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog}
}

type createShowReq struct {
	ShowName string `json:"show_name"`
}

type createCrateReq struct {
	CrateName string `json:"crate_name"`
}

type associateCratesReq struct {
	CrateIDs []int64 `json:"crate_ids"`
}

// CreateShow adds a new show.
func (h *CatalogHandler) CreateShow(c echo.Context) error {
	var req createShowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.ShowName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Catalog.CreateShow(ctx, req.ShowName)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create show"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"show_id": id})
}

// GetShows lists active shows ordered by name.
func (h *CatalogHandler) GetShows(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	shows, err := h.Catalog.GetShows(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(shows) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "no active shows"})
	}
	return c.JSON(http.StatusOK, shows)
}

// CreateCrate explicitly creates (or resolves) a crate by name.
func (h *CatalogHandler) CreateCrate(c echo.Context) error {
	var req createCrateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.CrateName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "crate_name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Catalog.ResolveOrCreateCrate(ctx, req.CrateName)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create crate"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"crate_id": id})
}

// GetCrates lists every crate.
func (h *CatalogHandler) GetCrates(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	crates, err := h.Catalog.GetCrates(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, crates)
}

// GetShowCrates lists the crates associated with a show.
func (h *CatalogHandler) GetShowCrates(c echo.Context) error {
	showID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show id must be an integer"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	crates, err := h.Catalog.GetCratesByShow(ctx, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, crates)
}

// AssociateCrates links crates to a show. The body carries a typed list of
// crate ids; an empty list is a validation error.
func (h *CatalogHandler) AssociateCrates(c echo.Context) error {
	showID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show id must be an integer"})
	}
	var req associateCratesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.CrateIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "crate_ids required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.AssociateCrates(ctx, showID, req.CrateIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not associate crates"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"show_id": showID, "crate_ids": req.CrateIDs})
}

// GetShowArtists lists the artists reachable from a show's crates with their
// appearance counts.
func (h *CatalogHandler) GetShowArtists(c echo.Context) error {
	showID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show id must be an integer"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	artists, err := h.Catalog.GetShowArtists(ctx, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(artists) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "no artists for show"})
	}
	return c.JSON(http.StatusOK, artists)
}

// GetShowSongs lists the songs in a show's crates, optionally filtered by
// ?artist_id=.
func (h *CatalogHandler) GetShowSongs(c echo.Context) error {
	showID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show id must be an integer"})
	}
	var artistID *int64
	if s := c.QueryParam("artist_id"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "artist_id must be an integer"})
		}
		artistID = &n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	songs, err := h.Catalog.GetShowSongs(ctx, showID, artistID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(songs) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "no songs for show"})
	}
	return c.JSON(http.StatusOK, songs)
}
