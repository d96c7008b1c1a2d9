package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/edh-dashboard-backend/internal/http/response"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/ctxutil"
	"github.com/yungbote/edh-dashboard-backend/internal/services"
	"github.com/yungbote/edh-dashboard-backend/internal/tabular"
)

// SheetsHandler serves the Drive and Sheets endpoints. Routes are mounted behind
// AuthMiddleware.RequireGoogle.
type SheetsHandler struct {
	sheets services.SheetsService
}

func NewSheetsHandler(sheets services.SheetsService) *SheetsHandler {
	return &SheetsHandler{sheets: sheets}
}

// GET /api/drive/list-spreadsheets
func (h *SheetsHandler) ListSpreadsheets(c *gin.Context) {
	ctx := c.Request.Context()
	files, err := h.sheets.ListSpreadsheets(ctx, ctxutil.SessionID(ctx))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, files)
}

// GET /api/sheets/read?spreadsheetId=...&range=Sheet1!A1:D10
func (h *SheetsHandler) Read(c *gin.Context) {
	ctx := c.Request.Context()
	rng := c.DefaultQuery("range", services.DefaultReadRange)
	values, err := h.sheets.ReadRange(ctx, ctxutil.SessionID(ctx), c.Query("spreadsheetId"), rng)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if values == nil {
		values = tabular.Matrix{}
	}
	response.RespondOK(c, gin.H{"values": values})
}

// POST /api/sheets/create
func (h *SheetsHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	out, err := h.sheets.CreateDatabase(ctx, ctxutil.SessionID(ctx))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/sheets/create-sample
func (h *SheetsHandler) CreateSample(c *gin.Context) {
	ctx := c.Request.Context()
	out, err := h.sheets.CreateSample(ctx, ctxutil.SessionID(ctx))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}
