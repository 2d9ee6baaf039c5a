// internal/handlers/revenue.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/propshare/propshare-backend/internal/i18n"
	"github.com/propshare/propshare-backend/internal/services"
	"github.com/propshare/propshare-backend/internal/utils"
)

type RevenueHandler struct {
	revenueService *services.RevenueService
}

func NewRevenueHandler(revenueService *services.RevenueService) *RevenueHandler {
	return &RevenueHandler{
		revenueService: revenueService,
	}
}

// POST /properties/:id/distributions
func (h *RevenueHandler) DistributeRevenue(c *gin.Context) {
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

	var req services.DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	result, err := h.revenueService.DistributeRevenue(caller, propertyID, &req)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":      i18n.T(lang, i18n.KeyDistributionOpened),
		"distribution": result.Distribution,
		"receipt":      result.Receipt,
	})
}

// GET /properties/:id/distributions
func (h *RevenueHandler) ListDistributions(c *gin.Context) {
	propertyID, ok := propertyIDParam(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid property id", nil)
		return
	}

	distributions, err := h.revenueService.ListDistributions(propertyID)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"distributions": distributions})
}

// POST /properties/:id/distributions/:seq/claim
func (h *RevenueHandler) ClaimRevenue(c *gin.Context) {
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

	seq, err := strconv.ParseUint(c.Param("seq"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid distribution id", nil)
		return
	}

	result, err := h.revenueService.ClaimRevenue(caller, propertyID, seq)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyClaimSuccess),
		"claim":   result,
	})
}
