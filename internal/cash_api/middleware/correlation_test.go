package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCorrelationIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		provided string
	}{
		{name: "generates an id when none is provided"},
		{name: "reuses the caller's id", provided: "till-3-req-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CorrelationID())

			var fromGin, fromCtx string
			router.GET("/test", func(c *gin.Context) {
				fromGin = GetCorrelationID(c)
				fromCtx = CorrelationIDFromContext(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.provided != "" {
				req.Header.Set(CorrelationIDHeader, tt.provided)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			header := rr.Header().Get(CorrelationIDHeader)
			if tt.provided != "" {
				assert.Equal(t, tt.provided, header)
			} else {
				_, err := uuid.Parse(header)
				assert.NoError(t, err)
			}
			assert.Equal(t, header, fromGin)
			assert.Equal(t, header, fromCtx)
		})
	}
}

func TestGetCorrelationID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetCorrelationID(c))

	c.Set(CorrelationIDKey, 12345)
	assert.Empty(t, GetCorrelationID(c))

	c.Set(CorrelationIDKey, "abc")
	assert.Equal(t, "abc", GetCorrelationID(c))
}

func TestCorrelationIDFromContext(t *testing.T) {
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
	assert.Equal(t, "abc", CorrelationIDFromContext(WithCorrelationID(context.Background(), "abc")))
}
