// internal/handlers/property.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/propshare/propshare-backend/internal/i18n"
	"github.com/propshare/propshare-backend/internal/models"
	"github.com/propshare/propshare-backend/internal/services"
	"github.com/propshare/propshare-backend/internal/utils"
)

type PropertyHandler struct {
	propertyService *services.PropertyService
	storageService  *services.StorageService
	statsService    *services.StatsService
}

func NewPropertyHandler(propertyService *services.PropertyService, storageService *services.StorageService, statsService *services.StatsService) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		storageService:  storageService,
		statsService:    statsService,
	}
}

// POST /properties
func (h *PropertyHandler) ListProperty(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	caller, ok := callerFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.ListPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	view, receipt, err := h.propertyService.ListProperty(caller, &req)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyPropertyListed),
		"property": view,
		"receipt":  receipt,
	})
}

// GET /properties
func (h *PropertyHandler) SearchProperties(c *gin.Context) {
	pagination := utils.GetPaginationParams(c)

	params := services.PropertySearchParams{
		Search: pagination.Search,
		Page:   pagination.Page,
		Limit:  pagination.Limit,
	}
	if state := c.Query("state"); state != "" {
		s := models.PropertyState(state)
		params.State = &s
	}
	if it := c.Query("investment_type"); it != "" {
		t := models.InvestmentType(it)
		params.InvestmentType = &t
	}

	views, total, err := h.propertyService.SearchProperties(params)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(views, total, pagination))
}

// GET /properties/:id
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, ok := propertyIDParam(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid property id", nil)
		return
	}

	view, err := h.propertyService.GetProperty(id)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"property": view})
}

// GET /properties/counter
func (h *PropertyHandler) PropertyCounter(c *gin.Context) {
	count, err := h.propertyService.PropertyCounter()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"property_counter": count})
}

// GET /properties/:id/events
func (h *PropertyHandler) ListEvents(c *gin.Context) {
	id, ok := propertyIDParam(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid property id", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	events, err := h.propertyService.ListEvents(id, limit)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"events": events})
}

// GET /stats
func (h *PropertyHandler) PlatformStats(c *gin.Context) {
	stats, err := h.statsService.PlatformStats()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"stats": stats})
}

// POST /properties/documents
// Uploads a deed or prospectus ahead of listing. The returned sha256
// is what the listing request passes as document_hash.
func (h *PropertyHandler) UploadDocument(c *gin.Context) {
	h.upload(c, "documents")
}

// POST /properties/images
func (h *PropertyHandler) UploadImage(c *gin.Context) {
	h.upload(c, "images")
}

func (h *PropertyHandler) upload(c *gin.Context, category string) {
	lang := utils.GetLangFromContext(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "file"), err.Error())
		return
	}
	defer file.Close()

	options := h.storageService.GetDefaultUploadOptions(category)
	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyUploadFailed), err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUploadSuccess),
		"file":    result,
	})
}
