// internal/handlers/investment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/propshare/propshare-backend/internal/i18n"
	"github.com/propshare/propshare-backend/internal/services"
	"github.com/propshare/propshare-backend/internal/utils"
)

type InvestmentHandler struct {
	saleService    *services.SaleService
	revenueService *services.RevenueService
}

func NewInvestmentHandler(saleService *services.SaleService, revenueService *services.RevenueService) *InvestmentHandler {
	return &InvestmentHandler{
		saleService:    saleService,
		revenueService: revenueService,
	}
}

// POST /properties/:id/purchase
func (h *InvestmentHandler) PurchaseTokens(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	caller, ok := callerFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	propertyID, ok := propertyIDParam(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid property id", nil)
		return
	}

	var req services.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	result, err := h.saleService.PurchaseTokens(caller, propertyID, &req)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyPurchaseSuccess),
		"purchase": result,
	})
}

// GET /portfolio
func (h *InvestmentHandler) Portfolio(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	entries, err := h.revenueService.Portfolio(caller.ID)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"portfolio": entries})
}
