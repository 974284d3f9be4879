package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"vidtube/api/auth"
	"vidtube/api/model"
	"vidtube/api/util"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", util.RandStr(8))

	db, err := gorm.Open(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(model.User{}, model.Subscription{}, model.Video{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	tokens := auth.NewTokenService(db, auth.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})

	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.GET("/protected", NewAuthMiddleware(db, tokens), func(c *gin.Context) {
		user := c.MustGet("user").(*model.User)
		c.JSON(http.StatusOK, gin.H{
			"userID":       c.GetString("userID"),
			"username":     user.Username,
			"passwordHash": user.PasswordHash,
			"refreshToken": user.RefreshToken,
		})
	})

	return r, db, tokens
}

func seedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()

	err := db.Create(&model.User{
		ID:           id,
		Username:     id,
		Email:        id + "@example.com",
		FullName:     "Test User",
		Avatar:       "https://cdn.test/a.png",
		PasswordHash: "secret-hash",
	}).Error
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestAuthMiddlewareCookie(t *testing.T) {
	r, db, tokens := newTestRouter(t)
	seedUser(t, db, "user-1")

	access, _, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: access})
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthMiddlewareBearerHeader(t *testing.T) {
	r, db, tokens := newTestRouter(t)
	seedUser(t, db, "user-1")

	access, _, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthMiddlewareCookieTakesPrecedence(t *testing.T) {
	r, db, tokens := newTestRouter(t)
	seedUser(t, db, "user-1")

	access, _, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Valid cookie, garbage header. The cookie must win
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: access})
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthMiddlewareRejections(t *testing.T) {
	r, db, tokens := newTestRouter(t)
	seedUser(t, db, "user-1")

	access, _, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := []struct {
		name  string
		setup func(req *http.Request)
	}{
		{"no credentials", func(req *http.Request) {}},
		{"garbage cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "accessToken", Value: "garbage"})
		}},
		{"garbage header", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer garbage")
		}},
		{"malformed header", func(req *http.Request) {
			req.Header.Set("Authorization", access)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401 got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareVanishedUser(t *testing.T) {
	r, db, tokens := newTestRouter(t)
	seedUser(t, db, "user-1")

	access, _, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := db.Where("id = ?", "user-1").Delete(model.User{}).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: access})
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	// A token for a deleted user is an auth failure, not a 404
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthMiddlewareOmitsSecrets(t *testing.T) {
	r, db, tokens := newTestRouter(t)
	seedUser(t, db, "user-1")

	access, _, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: access})
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	// The echo handler dumps the context user verbatim, the omitted
	// columns must come back zero-valued
	if strings.Contains(rec.Body.String(), "secret-hash") {
		t.Fatalf("context user leaked the password hash: %s", rec.Body.String())
	}
}
