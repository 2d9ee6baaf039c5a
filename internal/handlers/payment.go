// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/propshare/propshare-backend/internal/i18n"
	"github.com/propshare/propshare-backend/internal/services"
	"github.com/propshare/propshare-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /payments/purchase-intent
// Prices a token purchase and opens a Stripe intent for exactly that
// amount. The purchase itself is a separate call once payment clears.
func (h *PaymentHandler) CreatePurchaseIntent(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	caller, ok := callerFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.PurchaseIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	intent, err := h.paymentService.CreatePurchaseIntent(caller.ID, &req)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"payment_intent": intent})
}

// POST /payments/deposit-intent
func (h *PaymentHandler) CreateDepositIntent(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	caller, ok := callerFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.DepositIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	intent, err := h.paymentService.CreateDepositIntent(caller.ID, &req)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"payment_intent": intent})
}
