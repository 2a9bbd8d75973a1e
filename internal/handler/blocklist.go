package handler

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plzdj/plz-api/internal/repository"
	"github.com/plzdj/plz-api/internal/utils"
)

// BlocklistHandler lets the operator permanently ban an address.
type BlocklistHandler struct {
	Blocklist *repository.BlocklistRepo
}

func NewBlocklistHandler(blocklist *repository.BlocklistRepo) *BlocklistHandler {
	return &BlocklistHandler{Blocklist: blocklist}
}

type blockReq struct {
	IPAddress string `json:"ip_address"`
	Notes     string `json:"notes"`
}

// Block adds an IP to the blocklist. The reverse DNS name is looked up
// best-effort and stored alongside; a failed lookup stores null.
func (h *BlocklistHandler) Block(c echo.Context) error {
	var req blockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.IPAddress = strings.TrimSpace(req.IPAddress)
	if net.ParseIP(req.IPAddress) == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ip_address must be a valid IP"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	reverseDNS := utils.LookupReverseDNS(ctx, req.IPAddress)

	var notes *string
	if n := strings.TrimSpace(req.Notes); n != "" {
		notes = &n
	}

	id, err := h.Blocklist.Block(ctx, req.IPAddress, reverseDNS, notes)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store blocklist entry"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"blocklist_id": id})
}
