package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/chat-app/services/dm-service/internal/apperrors"
)

func TestSendRequiresIdentityAndConversation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	if _, _, err := env.msgs.Send(ctx, "", "whatever", "hi"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("anonymous send: got %v, want unauthorized", err)
	}
	if _, _, err := env.msgs.Send(ctx, "alice", "missing-conversation", "hi"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("send to missing conversation: got %v, want not found", err)
	}
}

func TestMessagesOrderedByCreationTime(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	conv, _ := env.convs.GetOrCreate(ctx, "alice", "bob")
	other, _ := env.convs.GetOrCreate(ctx, "alice", "carol")

	// interleave an unrelated conversation's traffic
	env.at(10 * time.Millisecond)
	env.msgs.Send(ctx, "alice", conv.ID, "one")
	env.at(15 * time.Millisecond)
	env.msgs.Send(ctx, "carol", other.ID, "noise")
	env.at(20 * time.Millisecond)
	env.msgs.Send(ctx, "bob", conv.ID, "two")
	env.at(30 * time.Millisecond)
	env.msgs.Send(ctx, "alice", conv.ID, "three")

	out, err := env.msgs.List(ctx, conv.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d messages, want 3", len(out))
	}
	for i, want := range []string{"one", "two", "three"} {
		if out[i].Content != want {
			t.Fatalf("message %d = %q, want %q", i, out[i].Content, want)
		}
	}
	if !out[0].CreatedAt.Before(out[1].CreatedAt) || !out[1].CreatedAt.Before(out[2].CreatedAt) {
		t.Fatal("timestamps not ascending")
	}
}

func TestListJoinsSenderProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	env.userSvc.Sync(ctx, "bob", "Bob", "bob@example.com", "http://img/bob")
	conv, _ := env.convs.GetOrCreate(ctx, "alice", "bob")

	env.msgs.Send(ctx, "bob", conv.ID, "from bob")
	env.msgs.Send(ctx, "alice", conv.ID, "from unsynced alice")

	out, err := env.msgs.List(ctx, conv.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out[0].SenderName != "Bob" || out[0].SenderImageURL != "http://img/bob" {
		t.Fatalf("sender join failed: %+v", out[0])
	}
	if out[1].SenderName != "Unknown" || out[1].SenderImageURL != "" {
		t.Fatalf("unknown sender should default: %+v", out[1])
	}
}

func TestSendUpdatesPreviewTruncated(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	conv, _ := env.convs.GetOrCreate(ctx, "alice", "bob")

	content := strings.Repeat("ab", 40) // 80 characters
	env.at(25 * time.Millisecond)
	if _, _, err := env.msgs.Send(ctx, "alice", conv.ID, content); err != nil {
		t.Fatalf("send: %v", err)
	}

	out, err := env.convs.ListForUser(ctx, "bob")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := out[0].LastMessagePreview; got != content[:50] {
		t.Fatalf("preview = %q (len %d), want first 50 chars", got, len(got))
	}
	if out[0].LastMessageTime == nil || !out[0].LastMessageTime.Equal(env.now) {
		t.Fatalf("last message time = %v, want %v", out[0].LastMessageTime, env.now)
	}
	// the stored message keeps the full content
	msgs, _ := env.msgs.List(ctx, conv.ID)
	if msgs[0].Content != content {
		t.Fatal("storage truncated the message body")
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("short"); got != "short" {
		t.Fatalf("short preview = %q", got)
	}
	long := strings.Repeat("x", 51)
	if got := Preview(long); len([]rune(got)) != 50 {
		t.Fatalf("long preview length = %d, want 50", len([]rune(got)))
	}
	// multi-byte characters count as characters, not bytes
	wide := strings.Repeat("ありがとう", 12) // 60 runes
	if got := []rune(Preview(wide)); len(got) != 50 {
		t.Fatalf("wide preview length = %d runes, want 50", len(got))
	}
}
