package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "learn-graph/backend/pkg/errors"
	"learn-graph/backend/pkg/logger"
)

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "ok", response["status"])
}

func TestCreateTopic_MissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Mock endpoint with the same binding rules
	router.POST("/api/topics", func(c *gin.Context) {
		var req struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"name": req.Name})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/topics", bytes.NewBuffer([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRatingValueBinding_AcceptsZero(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Same binding rules as the rating and vote handlers; a pointer value
	// keeps an explicit 0 distinguishable from a missing field
	router.POST("/api/resources/:id/rating", func(c *gin.Context) {
		var req struct {
			Value *float64 `json:"value" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"value": *req.Value})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/resources/r1/rating", bytes.NewBufferString(`{"value": 0}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/resources/r1/rating", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := &api{log: logger.Get()}

	cases := []struct {
		err      error
		expected int
	}{
		{apperrors.NewNotFound("Topic", nil), http.StatusNotFound},
		{apperrors.NewConfiguration("bad filter field"), http.StatusBadRequest},
		{apperrors.NewAmbiguousResult("Topic", nil), http.StatusConflict},
		{apperrors.NewStorageUnavailable("run statement", assert.AnError), http.StatusServiceUnavailable},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		a.respondError(c, tc.err)
		assert.Equal(t, tc.expected, w.Code, "error %v", tc.err)
	}
}

func TestActingUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request, _ = http.NewRequest("GET", "/", nil)
	assert.Nil(t, actingUser(c))

	c.Request.Header.Set("X-User-Id", "u1")
	user := actingUser(c)
	assert.NotNil(t, user)
	assert.Equal(t, "u1", *user)
}

func TestPaginationFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request, _ = http.NewRequest("GET", "/?offset=10&limit=5", nil)
	p := paginationFromQuery(c)
	assert.NotNil(t, p)
	assert.Equal(t, 10, *p.Offset)
	assert.Equal(t, 5, *p.Limit)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request, _ = http.NewRequest("GET", "/", nil)
	assert.Nil(t, paginationFromQuery(c))

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request, _ = http.NewRequest("GET", "/?limit=abc", nil)
	assert.Nil(t, paginationFromQuery(c))
}
