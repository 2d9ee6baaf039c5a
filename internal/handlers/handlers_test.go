// internal/handlers/handlers_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/propshare/propshare-backend/internal/config"
	"github.com/propshare/propshare-backend/internal/ledger"
	"github.com/propshare/propshare-backend/internal/models"
	"github.com/propshare/propshare-backend/internal/services"
)

// asUser stands in for the auth middleware during tests.
func asUser(id uuid.UUID, userType models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id.String())
		c.Set("user_type", string(userType))
		c.Next()
	}
}

type LedgerAPITestSuite struct {
	suite.Suite
	store    *ledger.MemoryStore
	router   *gin.Engine
	ownerID  uuid.UUID
	aliceID  uuid.UUID
}

func (suite *LedgerAPITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.store = ledger.NewMemoryStore()
	suite.ownerID = uuid.New()
	suite.aliceID = uuid.New()

	cfg := &config.Config{}
	propertyService := services.NewPropertyService(suite.store, cfg)
	saleService := services.NewSaleService(suite.store)
	revenueService := services.NewRevenueService(suite.store, nil)
	statsService := services.NewStatsService(suite.store)

	propertyHandler := NewPropertyHandler(propertyService, nil, statsService)
	investmentHandler := NewInvestmentHandler(saleService, revenueService)
	revenueHandler := NewRevenueHandler(revenueService)

	suite.router = gin.New()
	v1 := suite.router.Group("/v1")

	properties := v1.Group("/properties")
	properties.GET("/counter", propertyHandler.PropertyCounter)
	properties.GET("/:id", propertyHandler.GetProperty)
	properties.GET("/:id/events", propertyHandler.ListEvents)
	properties.GET("/:id/distributions", revenueHandler.ListDistributions)
	properties.POST("", asUser(suite.ownerID, models.UserTypeAdmin), propertyHandler.ListProperty)
	properties.POST("/:id/purchase", asUser(suite.aliceID, models.UserTypeInvestor), investmentHandler.PurchaseTokens)
	properties.POST("/:id/distributions", asUser(suite.ownerID, models.UserTypeAdmin), revenueHandler.DistributeRevenue)
	properties.POST("/:id/distributions/:seq/claim", asUser(suite.aliceID, models.UserTypeInvestor), revenueHandler.ClaimRevenue)

	v1.GET("/stats/platform", propertyHandler.PlatformStats)
}

func (suite *LedgerAPITestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *LedgerAPITestSuite) listProperty() uint64 {
	w := suite.do("POST", "/v1/properties", gin.H{
		"name":             "Harborview Apartments",
		"location":         "Lisbon, PT",
		"document_hash":    "c0ffee",
		"total_value":      100000,
		"total_tokens":     100,
		"min_investment":   5000,
		"expected_roi":     850,
		"investment_type":  "rental",
		"funding_duration": 86400,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var response struct {
		Data struct {
			Property struct {
				ID uint64 `json:"id"`
			} `json:"property"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response.Data.Property.ID
}

func (suite *LedgerAPITestSuite) TestListAndGetProperty() {
	id := suite.listProperty()
	suite.Equal(uint64(1), id)

	w := suite.do("GET", fmt.Sprintf("/v1/properties/%d", id), nil)
	suite.Equal(http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.True(response["success"].(bool))

	w = suite.do("GET", "/v1/properties/counter", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"property_counter":1`)
}

func (suite *LedgerAPITestSuite) TestGetPropertyNotFound() {
	w := suite.do("GET", "/v1/properties/42", nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), "PROPERTY_NOT_FOUND")
}

func (suite *LedgerAPITestSuite) TestPurchaseFlow() {
	id := suite.listProperty()

	w := suite.do("POST", fmt.Sprintf("/v1/properties/%d/purchase", id), gin.H{
		"token_amount": 10,
		"paid_amount":  10000,
	})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	// Wrong payment is rejected with the stable error code.
	w = suite.do("POST", fmt.Sprintf("/v1/properties/%d/purchase", id), gin.H{
		"token_amount": 10,
		"paid_amount":  9000,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "INSUFFICIENT_PAYMENT")

	// Oversized orders are rejected.
	w = suite.do("POST", fmt.Sprintf("/v1/properties/%d/purchase", id), gin.H{
		"token_amount": 91,
		"paid_amount":  91000,
	})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "EXCEEDS_SUPPLY")
}

func (suite *LedgerAPITestSuite) TestDistributeAndClaim() {
	id := suite.listProperty()

	w := suite.do("POST", fmt.Sprintf("/v1/properties/%d/purchase", id), gin.H{
		"token_amount": 40,
		"paid_amount":  40000,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.do("POST", fmt.Sprintf("/v1/properties/%d/distributions", id), gin.H{
		"amount": 10000,
	})
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.do("POST", fmt.Sprintf("/v1/properties/%d/distributions/0/claim", id), nil)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Contains(w.Body.String(), `"payout_amount":10000`)

	// A second claim on the same distribution fails.
	w = suite.do("POST", fmt.Sprintf("/v1/properties/%d/distributions/0/claim", id), nil)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "ALREADY_CLAIMED")

	w = suite.do("GET", fmt.Sprintf("/v1/properties/%d/distributions", id), nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *LedgerAPITestSuite) TestEventFeed() {
	id := suite.listProperty()

	w := suite.do("GET", fmt.Sprintf("/v1/properties/%d/events", id), nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "PropertyListed")
}

func (suite *LedgerAPITestSuite) TestPlatformStats() {
	suite.listProperty()

	w := suite.do("GET", "/v1/stats/platform", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"total_properties":1`)
}

func TestLedgerAPITestSuite(t *testing.T) {
	suite.Run(t, new(LedgerAPITestSuite))
}
