package handler

import (
	"context"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plzdj/plz-api/internal/repository"
)

// SongHandler ingests song metadata into the catalog.
type SongHandler struct {
	Catalog *repository.CatalogRepo
	Songs   *repository.SongRepo
}

func NewSongHandler(catalog *repository.CatalogRepo, songs *repository.SongRepo) *SongHandler {
	return &SongHandler{Catalog: catalog, Songs: songs}
}

type addSongReq struct {
	CrateName string  `json:"crate_name"`
	Artist    string  `json:"artist"`
	Hash      string  `json:"hash"` // hex-encoded audio fingerprint
	Title     string  `json:"title"`
	Tempo     float64 `json:"tempo"`
	Key       string  `json:"key"`
}

// AddSong resolves the crate and artist by name (creating them on first use)
// and upserts the song keyed by its audio fingerprint. Re-submitting the same
// fingerprint updates the metadata in place.
func (h *SongHandler) AddSong(c echo.Context) error {
	var req addSongReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.CrateName = strings.TrimSpace(req.CrateName)
	req.Artist = strings.TrimSpace(req.Artist)
	req.Title = strings.TrimSpace(req.Title)
	if req.CrateName == "" || req.Artist == "" || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "crate_name/artist/title required"})
	}
	hash, err := hex.DecodeString(req.Hash)
	if err != nil || len(hash) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hash must be a hex fingerprint"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	crateID, err := h.Catalog.ResolveOrCreateCrate(ctx, req.CrateName)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not resolve crate"})
	}
	artistID, err := h.Catalog.ResolveOrCreateArtist(ctx, req.Artist)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not resolve artist"})
	}

	songID, err := h.Songs.Upsert(ctx, crateID, artistID, hash, req.Title, req.Tempo, req.Key)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store song"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"id": songID})
}
