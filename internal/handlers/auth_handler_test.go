package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inventorywise/internal/middleware"
	"inventorywise/internal/models"
	"inventorywise/internal/services"
	"inventorywise/pkg/jwt"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthRouter(t *testing.T) (*gorm.DB, *services.UserService, *jwt.JWTManager, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Profile{},
		&models.Permission{}, &models.Role{},
		&models.RolePermission{}, &models.UserRole{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	userService := services.NewUserService(db)
	jwtManager := jwt.NewJWTManager("test-secret", 2*time.Hour, 168*time.Hour)
	handler := NewAuthHandler(userService, jwtManager)
	auth := middleware.NewAuthMiddleware(userService, jwtManager)

	router := gin.New()
	group := router.Group("/api/v1/auth")
	group.POST("/register", handler.Register)
	group.POST("/login", handler.Login)
	group.POST("/logout", handler.Logout)
	group.POST("/refresh", handler.Refresh)
	group.GET("/profile", auth.RequireAuth(), handler.Profile)

	return db, userService, jwtManager, router
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, w.Body.String())
	}
	return body
}

func registerAlice(t *testing.T, router *gin.Engine) {
	t.Helper()
	w := postJSON(router, "/api/v1/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "supersecret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status = %d (%s)", w.Code, w.Body.String())
	}
}

func TestRegister(t *testing.T) {
	_, _, _, router := setupAuthRouter(t)

	registerAlice(t, router)

	// 用户名重复
	w := postJSON(router, "/api/v1/auth/register", gin.H{
		"username": "alice",
		"email":    "alice2@example.com",
		"password": "supersecret1",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate username: status = %d", w.Code)
	}
	body := decodeBody(t, w)
	if !strings.Contains(body["message"].(string), "username already exists") {
		t.Fatalf("duplicate username message = %v", body["message"])
	}
}

func TestLoginSuccess(t *testing.T) {
	_, _, _, router := setupAuthRouter(t)
	registerAlice(t, router)

	// 用户名登录
	w := postJSON(router, "/api/v1/auth/login", gin.H{
		"identifier": "alice",
		"password":   "supersecret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d (%s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["message"] != "Login successful" {
		t.Fatalf("message = %v", body["message"])
	}
	if body["token"] == nil || body["refresh_token"] == nil {
		t.Fatalf("expected token and refresh_token in body: %v", body)
	}

	// httponly cookie
	cookies := w.Result().Cookies()
	var found bool
	for _, cookie := range cookies {
		if cookie.Name == "token" && cookie.HttpOnly && cookie.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected httponly token cookie, got %v", cookies)
	}

	// 邮箱登录
	w = postJSON(router, "/api/v1/auth/login", gin.H{
		"identifier": "alice@example.com",
		"password":   "supersecret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login by email: status = %d", w.Code)
	}
}

func TestLoginFailures(t *testing.T) {
	db, _, _, router := setupAuthRouter(t)
	registerAlice(t, router)

	// 未知用户
	w := postJSON(router, "/api/v1/auth/login", gin.H{
		"identifier": "nobody",
		"password":   "supersecret1",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: status = %d", w.Code)
	}
	if decodeBody(t, w)["message"] != "User Not Found" {
		t.Fatalf("unknown user message mismatch")
	}

	// 密码错误
	w = postJSON(router, "/api/v1/auth/login", gin.H{
		"identifier": "alice",
		"password":   "wrongpassword",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d", w.Code)
	}
	if decodeBody(t, w)["message"] != "Incorrect Password" {
		t.Fatalf("wrong password message mismatch")
	}

	// 停用账户：先于密码检查，即使密码正确也一样的400
	db.Model(&models.User{}).Where("username = ?", "alice").Update("is_active", false)
	for _, password := range []string{"supersecret1", "wrongpassword"} {
		w = postJSON(router, "/api/v1/auth/login", gin.H{
			"identifier": "alice",
			"password":   password,
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("deactivated: status = %d", w.Code)
		}
		if decodeBody(t, w)["message"] != "Account is deactivated" {
			t.Fatalf("deactivated message mismatch")
		}
	}
}

func TestRefresh(t *testing.T) {
	_, userService, jwtManager, router := setupAuthRouter(t)
	registerAlice(t, router)

	user, err := userService.GetByUsername("alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}

	refreshToken, err := jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	w := postJSON(router, "/api/v1/auth/refresh", gin.H{"refresh_token": refreshToken})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: status = %d (%s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	accessToken, _ := body["access_token"].(string)
	if accessToken == "" {
		t.Fatalf("expected access_token in body: %v", body)
	}

	// 换出来的访问令牌可以直接用
	userID, err := jwtManager.VerifyToken(accessToken)
	if err != nil || userID != user.ID {
		t.Fatalf("verify refreshed token: id=%d err=%v", userID, err)
	}

	// 过期的刷新令牌被拒绝
	expiredManager := jwt.NewJWTManager("test-secret", 2*time.Hour, -time.Minute)
	expired, _ := expiredManager.GenerateRefreshToken(user.ID)
	w = postJSON(router, "/api/v1/auth/refresh", gin.H{"refresh_token": expired})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expired refresh: status = %d", w.Code)
	}
	if decodeBody(t, w)["message"] != "Token has expired" {
		t.Fatalf("expired refresh message mismatch")
	}
}

func TestLogout(t *testing.T) {
	_, _, _, router := setupAuthRouter(t)

	// 没有cookie时登出是400
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("logout without cookie: status = %d", w.Code)
	}
	if decodeBody(t, w)["message"] != "User is already logged out" {
		t.Fatalf("logout message mismatch")
	}

	// 带cookie时登出成功并清除cookie
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "whatever"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", w.Code)
	}
	if decodeBody(t, w)["message"] != "Logged Out Successfully" {
		t.Fatalf("logout message mismatch")
	}
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "token" && cookie.MaxAge >= 0 {
			t.Fatalf("expected token cookie to be expired, got MaxAge=%d", cookie.MaxAge)
		}
	}
}

func TestProfile(t *testing.T) {
	_, userService, jwtManager, router := setupAuthRouter(t)
	registerAlice(t, router)

	user, err := userService.GetByUsername("alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	token, _ := jwtManager.GenerateAccessToken(user.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("profile: status = %d (%s)", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	data, _ := body["data"].(map[string]interface{})
	if data == nil {
		t.Fatalf("expected data in body: %v", body)
	}
	userData, _ := data["user"].(map[string]interface{})
	if userData == nil || userData["username"] != "alice" {
		t.Fatalf("expected user in profile data: %v", data)
	}
	if _, ok := data["profile"]; !ok {
		t.Fatalf("expected profile in data: %v", data)
	}
}
