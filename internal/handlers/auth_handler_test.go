package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamfinder/internal/middleware"
	"teamfinder/internal/models"
	"teamfinder/internal/services"
)

type stubUserRepo struct {
	user *models.User
}

func (r *stubUserRepo) Create(user *models.User) error { return nil }
func (r *stubUserRepo) GetByID(id int) (*models.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, nil
}
func (r *stubUserRepo) GetByTelegramID(telegramID string) (*models.User, error) {
	if r.user != nil && r.user.TelegramID == telegramID {
		return r.user, nil
	}
	return nil, nil
}
func (r *stubUserRepo) UpdateProfile(user *models.User) error { return nil }
func (r *stubUserRepo) List(filter models.UserFilter) ([]*models.User, error) {
	return nil, nil
}

func newLoginRouter(t *testing.T) (*gin.Engine, *services.AuthService, *models.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	alice := &models.User{ID: 7, TelegramID: "tg-7", Username: "alice"}
	repo := &stubUserRepo{user: alice}
	codes := services.NewTokenStore(5 * time.Minute)
	throttle := services.NewAttemptThrottle(10, 15*time.Minute)
	auth := services.NewAuthService(codes, throttle, repo, nil, "http://localhost:3000")

	secret := []byte("test-secret")
	handler := NewAuthHandler(auth, services.NewUserService(repo), secret, time.Hour)

	r := gin.New()
	r.POST("/api/auth/login", handler.Login)
	r.GET("/api/auth/me", middleware.AuthMiddleware(secret), handler.Me)
	return r, auth, alice
}

func postLogin(t *testing.T, r *gin.Engine, code string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(gin.H{"code": code})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_ValidCodeYieldsSession(t *testing.T) {
	r, auth, alice := newLoginRouter(t)

	code, err := auth.RequestCode(alice)
	require.NoError(t, err)

	w := postLogin(t, r, code)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotEmpty(t, resp.Token)

	// токен реально открывает защищённый роут
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)

	// повторное использование кода
	w3 := postLogin(t, r, code)
	assert.Equal(t, http.StatusUnauthorized, w3.Code)
}

func TestLogin_MissingCode(t *testing.T) {
	r, _, _ := newLoginRouter(t)
	w := postLogin(t, r, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_InvalidAndExpiredLookTheSame(t *testing.T) {
	r, _, _ := newLoginRouter(t)
	w := postLogin(t, r, "NOPE1234")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired auth code")
}

func TestLogin_ThrottledAfterTenFailures(t *testing.T) {
	r, auth, alice := newLoginRouter(t)

	for i := 0; i < 10; i++ {
		w := postLogin(t, r, "WRONG123")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	code, err := auth.RequestCode(alice)
	require.NoError(t, err)
	w := postLogin(t, r, code)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestMe_RequiresToken(t *testing.T) {
	r, _, _ := newLoginRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
