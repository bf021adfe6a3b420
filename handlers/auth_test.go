package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/billing/config"
	"github.com/yourusername/billing/middleware"
	"github.com/yourusername/billing/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func seedTestUser(t *testing.T, db *gorm.DB, email, password, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Email: email, Name: "Test User", PasswordHash: string(hash), Role: role, IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	cfg := &config.Config{JWTSecret: "test-secret", JWTRefreshSecret: "test-refresh-secret"}
	seedTestUser(t, db, "admin@test", "correct-horse", "admin")
	handler := NewAuthHandler(db, cfg)

	router := gin.Default()
	router.POST("/auth/login", handler.Login)

	t.Run("Valid Credentials", func(t *testing.T) {
		body, _ := json.Marshal(LoginRequest{Email: "admin@test", Password: "correct-horse"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "access_token")
		assert.Contains(t, w.Body.String(), "refresh_token")
	})

	t.Run("Wrong Password", func(t *testing.T) {
		body, _ := json.Marshal(LoginRequest{Email: "admin@test", Password: "wrong"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Unknown User", func(t *testing.T) {
		body, _ := json.Marshal(LoginRequest{Email: "nobody@test", Password: "whatever"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRefresh(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	cfg := &config.Config{JWTSecret: "test-secret", JWTRefreshSecret: "test-refresh-secret"}
	user := seedTestUser(t, db, "admin@test", "correct-horse", "admin")
	handler := NewAuthHandler(db, cfg)

	router := gin.Default()
	router.POST("/auth/refresh", handler.Refresh)

	t.Run("Valid Refresh Token", func(t *testing.T) {
		refreshToken, err := middleware.GenerateToken(user.ID, user.Role, cfg.JWTRefreshSecret, time.Hour)
		require.NoError(t, err)

		body, _ := json.Marshal(RefreshTokenRequest{RefreshToken: refreshToken})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/auth/refresh", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "access_token")
	})

	t.Run("Unsigned Token Rejected", func(t *testing.T) {
		// an alg=none token must fail the signing-method check even though
		// it parses structurally
		claims := &middleware.Claims{
			UserID: user.ID,
			Role:   user.Role,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		body, _ := json.Marshal(RefreshTokenRequest{RefreshToken: unsigned})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/auth/refresh", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "InvalidToken")
	})

	t.Run("Access Secret Rejected", func(t *testing.T) {
		// a token signed with the access secret is not a refresh token
		accessToken, err := middleware.GenerateToken(user.ID, user.Role, cfg.JWTSecret, time.Hour)
		require.NoError(t, err)

		body, _ := json.Marshal(RefreshTokenRequest{RefreshToken: accessToken})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/auth/refresh", bytes.NewBuffer(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
