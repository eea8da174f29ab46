package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/chat-app/services/dm-service/internal/events"
	"github.com/yourorg/chat-app/services/dm-service/internal/repository"
)

func newUserService(users repository.Users) *UserService {
	return NewUserService(users, events.NopPublisher{}, zap.NewNop().Sugar())
}

func TestSyncIsIdempotent(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUsers()
	svc := newUserService(users)

	first, err := svc.Sync(ctx, "clerk_1", "Alice", "alice@example.com", "http://img/1")
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	second, err := svc.Sync(ctx, "clerk_1", "Alice B.", "alice.b@example.com", "http://img/2")
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("sync duplicated the user: %s vs %s", first.ID, second.ID)
	}
	if second.Name != "Alice B." || second.Email != "alice.b@example.com" || second.ImageURL != "http://img/2" {
		t.Fatalf("second sync did not keep latest fields: %+v", second)
	}

	got, err := users.FindByExternalID(ctx, "clerk_1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Name != "Alice B." {
		t.Fatalf("stored name = %q, want latest", got.Name)
	}
}

func TestSyncRejectsEmptyExternalID(t *testing.T) {
	svc := newUserService(repository.NewMemoryUsers())
	if _, err := svc.Sync(context.Background(), "", "Ghost", "", ""); err == nil {
		t.Fatal("expected error for empty external id")
	}
}

func TestListOthersExcludesCallerAndSortsByName(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(repository.NewMemoryUsers())

	for _, u := range [][2]string{{"clerk_c", "Carol"}, {"clerk_a", "Alice"}, {"clerk_b", "Bob"}} {
		if _, err := svc.Sync(ctx, u[0], u[1], "", ""); err != nil {
			t.Fatalf("sync %s: %v", u[0], err)
		}
	}

	out, err := svc.ListOthers(ctx, "clerk_b")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d users, want 2", len(out))
	}
	if out[0].Name != "Alice" || out[1].Name != "Carol" {
		t.Fatalf("wrong order: %s, %s", out[0].Name, out[1].Name)
	}
}

func TestSetOnlineScopedToCaller(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUsers()
	svc := newUserService(users)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	if _, err := svc.Sync(ctx, "clerk_a", "Alice", "", ""); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if _, err := svc.Sync(ctx, "clerk_b", "Bob", "", ""); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if err := svc.SetOnline(ctx, "clerk_a", true); err != nil {
		t.Fatalf("set online: %v", err)
	}

	a, _ := users.FindByExternalID(ctx, "clerk_a")
	if a.IsOnline == nil || !*a.IsOnline {
		t.Fatal("caller should be online")
	}
	if a.LastSeen == nil || !a.LastSeen.Equal(at) {
		t.Fatalf("last seen = %v, want %v", a.LastSeen, at)
	}

	b, _ := users.FindByExternalID(ctx, "clerk_b")
	if b.IsOnline != nil || b.LastSeen != nil {
		t.Fatalf("other user's record mutated: %+v", b)
	}

	if err := svc.SetOnline(ctx, "clerk_a", false); err != nil {
		t.Fatalf("set offline: %v", err)
	}
	a, _ = users.FindByExternalID(ctx, "clerk_a")
	if a.IsOnline == nil || *a.IsOnline {
		t.Fatal("caller should be offline after second call")
	}
}

func TestSetOnlineMissingUserIsNoop(t *testing.T) {
	svc := newUserService(repository.NewMemoryUsers())
	if err := svc.SetOnline(context.Background(), "clerk_unknown", true); err != nil {
		t.Fatalf("presence for unsynced user should be a no-op, got %v", err)
	}
}

func TestSetOnlineRequiresIdentity(t *testing.T) {
	svc := newUserService(repository.NewMemoryUsers())
	if err := svc.SetOnline(context.Background(), "", true); err == nil {
		t.Fatal("expected unauthorized")
	}
}
