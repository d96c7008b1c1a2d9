package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/edh-dashboard-backend/internal/datamanager"
	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/http/response"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/ctxutil"
	"github.com/yungbote/edh-dashboard-backend/internal/services"
)

// DeckHandler serves decks, games and the dashboard through the caller's DataManager.
type DeckHandler struct {
	data services.DataService
}

func NewDeckHandler(data services.DataService) *DeckHandler {
	return &DeckHandler{data: data}
}

func (h *DeckHandler) manager(c *gin.Context) (datamanager.DataManager, bool) {
	ctx := c.Request.Context()
	m, err := h.data.Manager(ctx, ctxutil.SessionID(ctx))
	if err != nil {
		response.RespondErr(c, err)
		return nil, false
	}
	return m, true
}

// GET /api/decks
func (h *DeckHandler) ListDecks(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	decks, err := m.GetDecks(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if decks == nil {
		decks = []*domain.Deck{}
	}
	response.RespondOK(c, decks)
}

// GET /api/decks/:deckId
func (h *DeckHandler) GetDeck(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	id := c.Param("deckId")
	deck, err := m.GetDeckByID(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if deck == nil {
		response.RespondErr(c, apierr.NotFound(`Deck "`+id+`" was not found.`))
		return
	}
	response.RespondOK(c, deck)
}

// POST /api/decks/append
// body: { "deckName", "targetBracket", "summary", "archidektLink" }
func (h *DeckHandler) AppendDeck(c *gin.Context) {
	var in domain.DeckInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondErr(c, err)
		return
	}
	in.Normalize()
	if in.DeckName == "" {
		response.RespondErr(c, apierr.BadRequest("Missing deckName"))
		return
	}
	m, ok := h.manager(c)
	if !ok {
		return
	}
	if err := m.AppendDeck(c.Request.Context(), in); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/decks/update
// body: DeckInput plus { "deckId", "originalName" }
func (h *DeckHandler) UpdateDeck(c *gin.Context) {
	var in domain.DeckUpdateInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondErr(c, err)
		return
	}
	in.Normalize()
	switch {
	case in.DeckID == "":
		response.RespondErr(c, apierr.BadRequest("Missing deckId"))
		return
	case in.DeckName == "":
		response.RespondErr(c, apierr.BadRequest("Missing deckName"))
		return
	}
	m, ok := h.manager(c)
	if !ok {
		return
	}
	if err := m.UpdateDeck(c.Request.Context(), in); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/decks/delete
// body: { "deckId", "deckName" }
func (h *DeckHandler) DeleteDeck(c *gin.Context) {
	var req struct {
		DeckID   string `json:"deckId" binding:"required"`
		DeckName string `json:"deckName" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	m, ok := h.manager(c)
	if !ok {
		return
	}
	deleted, err := m.DeleteDeck(c.Request.Context(), req.DeckID, req.DeckName)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "deletedGames": deleted})
}

// GET /api/games
func (h *DeckHandler) ListGames(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	games, err := m.GetGames(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if games == nil {
		games = []*domain.Game{}
	}
	response.RespondOK(c, games)
}

// POST /api/games/append
// body: { "deckName", "winner", "fun", "p2Fun", "p3Fun", "p4Fun", "notes", "estBracket" }
func (h *DeckHandler) AppendGame(c *gin.Context) {
	var in domain.GameInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondErr(c, err)
		return
	}
	in.Normalize()
	if in.DeckName == "" {
		response.RespondErr(c, apierr.BadRequest("Missing deckName"))
		return
	}
	m, ok := h.manager(c)
	if !ok {
		return
	}
	if err := m.AppendGame(c.Request.Context(), in); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/games/update
// body: GameInput plus { "gameId" }
func (h *DeckHandler) UpdateGame(c *gin.Context) {
	var in domain.GameUpdateInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondErr(c, err)
		return
	}
	in.Normalize()
	if in.GameID == "" {
		response.RespondErr(c, apierr.BadRequest("Missing gameId"))
		return
	}
	m, ok := h.manager(c)
	if !ok {
		return
	}
	if err := m.UpdateGame(c.Request.Context(), in); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/games/delete
// body: { "gameId" }
func (h *DeckHandler) DeleteGame(c *gin.Context) {
	var req struct {
		GameID string `json:"gameId" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	m, ok := h.manager(c)
	if !ok {
		return
	}
	if err := m.DeleteGame(c.Request.Context(), req.GameID); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/dashboard
func (h *DeckHandler) Dashboard(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	out, err := m.GetDashboardStats(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}
