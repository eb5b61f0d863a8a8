package cache

import (
	"context"
	"testing"
	"time"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
)

func TestLocalOwnerCache(t *testing.T) {
	ctx := context.Background()
	c := NewLocalOwnerCache(time.Minute)

	if _, ok := c.Get(ctx, "owner-1"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	c.Set(ctx, domain.OwnerSummary{ID: "owner-1", Name: "Olive"})
	got, ok := c.Get(ctx, "owner-1")
	if !ok || got.Name != "Olive" {
		t.Fatalf("expected hit, got %+v %v", got, ok)
	}
	c.Delete(ctx, "owner-1")
	if _, ok := c.Get(ctx, "owner-1"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestLocalLoginLimiter(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLoginLimiter(3, time.Minute)

	for i := 0; i < 2; i++ {
		if err := l.Fail(ctx, "applicant:a@example.com"); err != nil {
			t.Fatal(err)
		}
	}
	if blocked, _ := l.Blocked(ctx, "applicant:a@example.com"); blocked {
		t.Fatalf("expected not blocked below the limit")
	}
	if err := l.Fail(ctx, "applicant:a@example.com"); err != nil {
		t.Fatal(err)
	}
	if blocked, _ := l.Blocked(ctx, "applicant:a@example.com"); !blocked {
		t.Fatalf("expected blocked at the limit")
	}
	if blocked, _ := l.Blocked(ctx, "owner:a@example.com"); blocked {
		t.Fatalf("expected keys to be independent")
	}
	if err := l.Reset(ctx, "applicant:a@example.com"); err != nil {
		t.Fatal(err)
	}
	if blocked, _ := l.Blocked(ctx, "applicant:a@example.com"); blocked {
		t.Fatalf("expected reset to unblock")
	}
}
