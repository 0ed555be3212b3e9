package repository

import (
	"context"
	"testing"
	"time"

	"foodDeliveryAdmin/internal/testutil"
	"foodDeliveryAdmin/models"
)

func newSession(id, user string, expires time.Time) *models.Session {
	return &models.Session{
		ID:           id,
		UserID:       user,
		MobileNumber: "+919876543210",
		AccessToken:  "token-" + id,
		CreatedAt:    time.Now().Add(-time.Minute),
		ExpiresAt:    expires,
	}
}

func TestSessionRepository_CreateGetDelete(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "sessions_crud")
	repo := NewSessionRepository(d)
	ctx := context.Background()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	if err := repo.Create(ctx, newSession("s1", "u1", exp)); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("expected session, got nil")
	}
	if got.UserID != "u1" || got.AccessToken != "token-s1" || !got.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = repo.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after delete, got %+v", got)
	}
}

func TestSessionRepository_CreateValidates(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "sessions_validate")
	repo := NewSessionRepository(d)
	if err := repo.Create(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil session")
	}
	if err := repo.Create(context.Background(), &models.Session{ID: "x"}); err == nil {
		t.Fatalf("expected error for missing access token")
	}
}

func TestSessionRepository_DeleteExpiredAndByUser(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "sessions_purge")
	repo := NewSessionRepository(d)
	ctx := context.Background()
	now := time.Now()

	for _, s := range []*models.Session{
		newSession("old1", "u1", now.Add(-time.Hour)),
		newSession("old2", "u2", now.Add(-time.Second)),
		newSession("live1", "u1", now.Add(time.Hour)),
		newSession("live2", "u2", now.Add(time.Hour)),
	} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("create %s: %v", s.ID, err)
		}
	}

	n, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 2 {
		t.Fatalf("purged %d sessions, want 2", n)
	}

	n, err = repo.DeleteByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("delete by user: %v", err)
	}
	if n != 1 {
		t.Fatalf("deleted %d sessions for u1, want 1", n)
	}
	if s, _ := repo.GetByID(ctx, "live2"); s == nil {
		t.Fatalf("live2 should remain")
	}
}
