package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/edh-dashboard-backend/internal/http/response"
	"github.com/yungbote/edh-dashboard-backend/internal/services"
)

type DeckLinkHandler struct {
	links services.DeckLinkService
}

func NewDeckLinkHandler(links services.DeckLinkService) *DeckLinkHandler {
	return &DeckLinkHandler{links: links}
}

// GET /api/archidekt/:id
func (h *DeckLinkHandler) Archidekt(c *gin.Context) {
	raw, err := h.links.Archidekt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// GET /api/moxfield/:id
func (h *DeckLinkHandler) Moxfield(c *gin.Context) {
	raw, err := h.links.Moxfield(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// GET /api/deck-links/preview?url=...
func (h *DeckLinkHandler) Preview(c *gin.Context) {
	link := services.ParseDeckLink(c.Query("url"))
	preview, err := h.links.Preview(c.Request.Context(), link)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"link": link, "preview": preview})
}
