// internal/router/router_test.go
package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shopdesk/backend/internal/config"
	"github.com/shopdesk/backend/internal/models"
)

type RouterTestSuite struct {
	suite.Suite
	router *gin.Engine
	token  string
}

func (suite *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.CallRecord{},
		&models.AlertRecord{},
		&models.AppNotification{},
		&models.AuditLog{},
	))

	cfg := &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "router-test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 2,
		},
		AI: config.AIConfig{
			ConfidenceThreshold: 0.8,
			AutoConvert:         true,
		},
		Alerts: config.AlertConfig{
			CooldownHours: 24,
		},
		Frontend: config.FrontendConfig{
			BaseURL: "http://localhost:3000",
		},
	}

	suite.router = Initialize(db, cfg)
}

func (suite *RouterTestSuite) request(method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		suite.Require().NoError(err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, body)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if suite.token != "" {
		req.Header.Set("Authorization", "Bearer "+suite.token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *RouterTestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func (suite *RouterTestSuite) TestShopWorkflow() {
	// Health check is open.
	w := suite.request("GET", "/health", nil)
	suite.Equal(http.StatusOK, w.Code)

	// Owner-scoped routes reject anonymous callers.
	w = suite.request("GET", "/v1/inventory", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	// Register a shop owner.
	w = suite.request("POST", "/v1/auth/register", map[string]interface{}{
		"email":     "owner@example.com",
		"password":  "StrongPass1",
		"shop_name": "Corner Store",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	response := suite.decode(w)
	suite.True(response["success"].(bool))
	data := response["data"].(map[string]interface{})
	suite.token = data["access_token"].(string)
	suite.NotEmpty(suite.token)

	// Add a product.
	w = suite.request("POST", "/v1/inventory", map[string]interface{}{
		"name":     "Milk",
		"price":    "45",
		"quantity": 10,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	// Adding the same name again merges rather than duplicating.
	w = suite.request("POST", "/v1/inventory", map[string]interface{}{
		"name":     "  milk ",
		"price":    "50",
		"quantity": 5,
	})
	suite.Require().Equal(http.StatusOK, w.Code)
	response = suite.decode(w)
	merged := response["data"].(map[string]interface{})
	suite.True(merged["merged"].(bool))

	// Create an order and walk it through the lifecycle.
	w = suite.request("POST", "/v1/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"name": "Milk", "quantity": 2},
		},
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	response = suite.decode(w)
	order := response["data"].(map[string]interface{})
	orderID := order["id"].(string)

	w = suite.request("PUT", "/v1/orders/"+orderID+"/status", map[string]interface{}{
		"status": "delivered",
	})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request("PUT", "/v1/orders/"+orderID+"/status", map[string]interface{}{
		"status": "confirmed",
	})
	suite.Equal(http.StatusOK, w.Code)

	// Dashboard reflects the activity.
	w = suite.request("GET", "/v1/dashboard/stats", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	response = suite.decode(w)
	stats := response["data"].(map[string]interface{})
	suite.EqualValues(1, stats["total_orders"])
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
