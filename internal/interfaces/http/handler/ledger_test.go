package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupLedgerRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	api := engine.Group("/api/v1")
	NewLedgerHandler(nil).RegisterRoutes(api)
	return engine
}

func TestLedgerHandler_History_Validation(t *testing.T) {
	t.Run("requires reference_type", func(t *testing.T) {
		engine := setupLedgerRouter()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/api/v1/ledger/transactions?reference_id=0b9a9f44-2f0c-4ad6-96a2-3f4c8ad5a111", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires a valid reference_id", func(t *testing.T) {
		engine := setupLedgerRouter()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/api/v1/ledger/transactions?reference_type=appointment&reference_id=42", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
