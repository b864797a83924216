package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/nourishlabs/consistency-engine/internal/adapters/handler/http"
	"github.com/nourishlabs/consistency-engine/internal/adapters/handler/http/middleware"
	"github.com/nourishlabs/consistency-engine/internal/adapters/repository"
	"github.com/nourishlabs/consistency-engine/internal/core/domain"
	"github.com/nourishlabs/consistency-engine/internal/core/services"
)

func setupFreezeRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := services.NewFreezeService(repository.NewInMemoryFreezeRepository())
	handler := adapterHTTP.NewFreezeHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(middleware.ContextUserIDKey, userID)
		}
		c.Next()
	})

	api := r.Group("/api/v1")
	handler.RegisterRoutes(api)
	return r
}

func TestFreezeHandler(t *testing.T) {
	post := func(r *gin.Engine, userID string, body gin.H) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(body)

		req, _ := http.NewRequest("POST", "/api/v1/freezes", &buf)
		req.Header.Set("Content-Type", "application/json")
		if userID != "" {
			req.Header.Set("X-User-ID", userID)
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("Success: activate then read the balance", func(t *testing.T) {
		r := setupFreezeRouter()

		w := post(r, "user-1", gin.H{"days": 2})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var freeze domain.StreakFreeze
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &freeze))
		assert.Equal(t, 2, freeze.DaysRemaining)

		req, _ := http.NewRequest("GET", "/api/v1/freezes", nil)
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var balance services.FreezeBalance
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
		assert.Equal(t, 2, balance.RemainingDays)
		assert.Len(t, balance.Freezes, 1)
	})

	t.Run("Validation: 400 on non-positive days", func(t *testing.T) {
		r := setupFreezeRouter()

		w := post(r, "user-1", gin.H{"days": -1})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Security: 401 without user context", func(t *testing.T) {
		r := setupFreezeRouter()

		w := post(r, "", gin.H{"days": 1})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
