package auth

import (
	"errors"
	"fmt"
	"testing"
	"time"
	"vidtube/api/model"
	"vidtube/api/util"

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

func newTestService(t *testing.T, db *gorm.DB) *TokenService {
	t.Helper()

	return NewTokenService(db, Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
}

func seedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()

	err := db.Create(&model.User{
		ID:           id,
		Username:     id,
		Email:        id + "@example.com",
		FullName:     "Test User",
		Avatar:       "https://cdn.test/a.png",
		PasswordHash: "x",
	}).Error
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func storedRefreshToken(t *testing.T, db *gorm.DB, id string) *string {
	t.Helper()

	var user model.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}

	return user.RefreshToken
}

func TestIssueAndVerifyAccess(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	seedUser(t, db, "user-1")

	access, refresh, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("expected non-empty tokens")
	}

	userID, err := svc.VerifyAccess(access)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1 got %q", userID)
	}

	stored := storedRefreshToken(t, db, "user-1")
	if stored == nil || *stored != refresh {
		t.Fatal("refresh token was not persisted")
	}
}

func TestIssueOverwritesPreviousSession(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	seedUser(t, db, "user-1")

	_, first, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// A second login replaces the stored token, killing the first
	// session
	time.Sleep(time.Second)

	_, second, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if first == second {
		t.Fatal("expected a different refresh token")
	}

	if _, err := svc.VerifyRefresh(first); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired got %v", err)
	}

	if _, err := svc.VerifyRefresh(second); err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
}

func TestIssueUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	if _, _, err := svc.Issue("nobody"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid got %v", err)
	}
}

func TestVerifyAccessRejectsBadTokens(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	seedUser(t, db, "user-1")

	_, refresh, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		// A refresh token is signed with the other secret and must
		// never pass as an access token
		{"refresh as access", refresh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.VerifyAccess(tc.token); !errors.Is(err, ErrTokenInvalid) {
				t.Fatalf("expected ErrTokenInvalid got %v", err)
			}
		})
	}
}

func TestVerifyAccessExpired(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "user-1")

	svc := NewTokenService(db, Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     -time.Minute,
		RefreshTTL:    time.Hour,
	})

	access, _, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.VerifyAccess(access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid got %v", err)
	}
}

func TestRotateInvalidatesOldToken(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	seedUser(t, db, "user-1")

	_, old, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Signed tokens embed second-granularity timestamps, make sure
	// the rotated token differs
	time.Sleep(time.Second)

	access, fresh, err := svc.Rotate(old)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if fresh == old {
		t.Fatal("expected a new refresh token")
	}

	if userID, err := svc.VerifyAccess(access); err != nil || userID != "user-1" {
		t.Fatalf("verify rotated access: %v (%q)", err, userID)
	}

	// The old token died the moment the rotation landed
	if _, _, err := svc.Rotate(old); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired got %v", err)
	}

	// The new one keeps working
	time.Sleep(time.Second)

	if _, _, err := svc.Rotate(fresh); err != nil {
		t.Fatalf("rotate fresh: %v", err)
	}
}

func TestRevoke(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	seedUser(t, db, "user-1")

	_, refresh, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := svc.Revoke("user-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if stored := storedRefreshToken(t, db, "user-1"); stored != nil {
		t.Fatal("expected refresh token to be cleared")
	}

	if _, err := svc.VerifyRefresh(refresh); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired got %v", err)
	}

	if _, _, err := svc.Rotate(refresh); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired got %v", err)
	}
}
