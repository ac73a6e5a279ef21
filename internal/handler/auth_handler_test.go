package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bebo-bot-go/internal/config"
	"bebo-bot-go/internal/service"
	"bebo-bot-go/pkg/hash"
	"bebo-bot-go/pkg/token"
)

type authTokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    authTokenPair `json:"data"`
}

func newAuthRouter(t *testing.T) (*gin.Engine, *token.JWTManager) {
	t.Helper()
	passwordHash, err := hash.HashPassword("s3cret")
	require.NoError(t, err)

	jwtManager := token.NewJWTManager("test-secret", 1, 7)
	h := NewAuthHandler(service.NewAuthService(config.AdminConfig{Username: "admin", PasswordHash: passwordHash}, jwtManager))

	router := gin.New()
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/refreshToken", h.RefreshToken)
	}
	return router, jwtManager
}

func TestAuthHandler_Login(t *testing.T) {
	router, jwtManager := newAuthRouter(t)

	w := doRequest(router, http.MethodPost, "/auth/login", []byte(`{"username":"admin","password":"s3cret"}`))
	require.Equal(t, http.StatusOK, w.Code)

	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 200, resp.Code)
	require.NotEmpty(t, resp.Data.Token)
	require.NotEmpty(t, resp.Data.RefreshToken)

	claims, err := jwtManager.VerifyToken(resp.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	router, _ := newAuthRouter(t)

	t.Run("wrong password", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/auth/login", []byte(`{"username":"admin","password":"guess"}`))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/auth/login", []byte(`{"username":"admin"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	router, jwtManager := newAuthRouter(t)

	w := doRequest(router, http.MethodPost, "/auth/login", []byte(`{"username":"admin","password":"s3cret"}`))
	require.Equal(t, http.StatusOK, w.Code)
	var login authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	body := []byte(fmt.Sprintf(`{"refreshToken":%q}`, login.Data.RefreshToken))
	w = doRequest(router, http.MethodPost, "/auth/refreshToken", body)
	require.Equal(t, http.StatusOK, w.Code)

	var refreshed authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	require.NotEmpty(t, refreshed.Data.Token)
	require.NotEmpty(t, refreshed.Data.RefreshToken)

	claims, err := jwtManager.VerifyToken(refreshed.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestAuthHandler_RefreshTokenRejectsGarbage(t *testing.T) {
	router, _ := newAuthRouter(t)

	w := doRequest(router, http.MethodPost, "/auth/refreshToken", []byte(`{"refreshToken":"not-a-jwt"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
