package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/portfolio_server/internal/pkg/jwt"
	"github.com/qs3c/portfolio_server/internal/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testJWTSecret = "test-secret-key-for-middleware"

func parseError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	var body response.ErrorBody
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err)
	return body
}

func adminRouter() *gin.Engine {
	router := gin.New()
	router.Use(AdminAuth(testJWTSecret))
	router.GET("/test", func(c *gin.Context) {
		adminID, ok := GetAdminID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"admin_id": adminID, "name": c.GetString(AdminNameKey)})
	})
	return router
}

func serveWithAuth(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdminAuth_Success(t *testing.T) {
	token, err := jwt.GenerateToken(123, "owner", testJWTSecret, 24)
	require.NoError(t, err)

	w := serveWithAuth(adminRouter(), "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"admin_id":123,"name":"owner"}`, w.Body.String())
}

func TestAdminAuth_Rejections(t *testing.T) {
	otherSecret, err := jwt.GenerateToken(123, "owner", "different-secret", 24)
	require.NoError(t, err)
	expired, err := jwt.GenerateToken(123, "owner", testJWTSecret, 0)
	require.NoError(t, err)
	uploadToken, err := jwt.GenerateUploadToken(jwt.UploadClaims{Pathname: "a.png"}, testJWTSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no bearer prefix", "some-token-without-bearer"},
		{"invalid token", "Bearer invalid-token"},
		{"wrong secret", "Bearer " + otherSecret},
		{"expired", "Bearer " + expired},
		{"upload token", "Bearer " + uploadToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWithAuth(adminRouter(), tt.header)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			body := parseError(t, w)
			assert.Equal(t, response.CodeAuthFailed, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestGetAdminID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetAdminID(c)
	assert.False(t, ok)
}
