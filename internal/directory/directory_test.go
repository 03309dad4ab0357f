package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := conn.AutoMigrate(&models.User{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return New(conn)
}

func seedUser(t *testing.T, dir *Directory, email, username, ip string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		Username:     username,
		Password:     "hash",
		DateOfBirth:  "02/08/1999",
		RegisteredIP: ip,
		Active:       true,
	}
	if err := dir.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestByEmail_CaseInsensitive(t *testing.T) {
	dir := newTestDirectory(t)
	seedUser(t, dir, "A@X.com", "alice", "1.1.1.1")

	user, err := dir.ByEmail(context.Background(), "  a@x.COM ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("expected stored email normalized, got %q", user.Email)
	}
}

func TestLookups_NotFound(t *testing.T) {
	dir := newTestDirectory(t)

	if _, err := dir.ByEmail(context.Background(), "nobody@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := dir.ByUsername(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := dir.ByRegisteredIP(context.Background(), "0.0.0.0"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOtherUserHoldsIP(t *testing.T) {
	dir := newTestDirectory(t)
	alice := seedUser(t, dir, "a@x.com", "alice", "1.1.1.1")
	seedUser(t, dir, "b@x.com", "bob", "2.2.2.2")

	taken, err := dir.OtherUserHoldsIP(context.Background(), "2.2.2.2", alice.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if !taken {
		t.Fatalf("expected bob's ip to count as taken for alice")
	}

	taken, err = dir.OtherUserHoldsIP(context.Background(), "1.1.1.1", alice.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if taken {
		t.Fatalf("a user's own ip must not count as taken")
	}
}

func TestRecordLogin_MovesRegisteredIP(t *testing.T) {
	dir := newTestDirectory(t)
	alice := seedUser(t, dir, "a@x.com", "alice", "1.1.1.1")

	at := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	if err := dir.RecordLogin(context.Background(), alice.ID, "2.2.2.2", at); err != nil {
		t.Fatalf("record login: %v", err)
	}

	reloaded, err := dir.ByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.RegisteredIP != "2.2.2.2" {
		t.Fatalf("expected registered ip moved, got %q", reloaded.RegisteredIP)
	}
	if reloaded.LastLoginAt == nil || !reloaded.LastLoginAt.Equal(at) {
		t.Fatalf("expected last login stamped, got %v", reloaded.LastLoginAt)
	}
}

func TestRecordLogin_UnknownUser(t *testing.T) {
	dir := newTestDirectory(t)
	if err := dir.RecordLogin(context.Background(), 999, "1.1.1.1", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkVerified_ClearsPendingToken(t *testing.T) {
	dir := newTestDirectory(t)
	alice := seedUser(t, dir, "a@x.com", "alice", "1.1.1.1")

	at := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	if err := dir.SetVerificationToken(context.Background(), alice.ID, "tok", at.Add(24*time.Hour), at); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := dir.MarkVerified(context.Background(), alice.ID, at); err != nil {
		t.Fatalf("mark verified: %v", err)
	}

	reloaded, err := dir.ByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Verified {
		t.Fatalf("expected verified flag set")
	}
	if reloaded.VerificationToken != nil || reloaded.VerificationExpiry != nil {
		t.Fatalf("expected pending token cleared, got %+v", reloaded)
	}
}
