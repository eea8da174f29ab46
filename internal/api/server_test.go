package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/yourorg/chat-app/services/dm-service/internal/config"
	"github.com/yourorg/chat-app/services/dm-service/internal/events"
	"github.com/yourorg/chat-app/services/dm-service/internal/repository"
	"github.com/yourorg/chat-app/services/dm-service/internal/service"
	"github.com/yourorg/chat-app/services/dm-service/internal/typing"
	"github.com/yourorg/chat-app/services/dm-service/internal/ws"
)

const testSecret = "test-secret"

func newTestApp() *fiber.App {
	users := repository.NewMemoryUsers()
	convs := repository.NewMemoryConversations()
	msgs := repository.NewMemoryMessages()
	members := repository.NewMemoryMembers()
	pub := events.NopPublisher{}
	log := zap.NewNop().Sugar()

	cfg := &config.Config{}
	cfg.App.JWTSecret = testSecret

	return NewServer(
		cfg,
		service.NewUserService(users, pub, log),
		service.NewConversationService(convs, msgs, members, users, pub, log),
		service.NewMessageService(msgs, convs, users, pub, log),
		service.NewTypingService(typing.NewMemoryStore(), 3*time.Second),
		ws.NewHub(),
		log,
	)
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestRoutesRequireAuth(t *testing.T) {
	app := newTestApp()

	resp := doJSON(t, app, http.MethodGet, "/api/v1/conversations", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/v1/conversations", "garbage", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d, want 401", resp.StatusCode)
	}
}

func TestConversationFlow(t *testing.T) {
	app := newTestApp()
	alice := signToken(t, "alice")
	bob := signToken(t, "bob")

	// profile sync for bob so alice's summary can join it
	resp := doJSON(t, app, http.MethodPost, "/api/v1/users/sync", bob, map[string]string{
		"external_id": "bob", "name": "Bob", "image_url": "http://img/bob",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sync: status %d", resp.StatusCode)
	}

	// alice opens a conversation with bob
	var created struct {
		ConversationID string `json:"conversation_id"`
	}
	resp = doJSON(t, app, http.MethodPost, "/api/v1/conversations", alice, map[string]string{"other_user_id": "bob"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	decode(t, resp, &created)
	if created.ConversationID == "" {
		t.Fatal("no conversation id returned")
	}

	// bob opening it the other way around lands on the same thread
	var mirrored struct {
		ConversationID string `json:"conversation_id"`
	}
	resp = doJSON(t, app, http.MethodPost, "/api/v1/conversations", bob, map[string]string{"other_user_id": "alice"})
	decode(t, resp, &mirrored)
	if mirrored.ConversationID != created.ConversationID {
		t.Fatalf("duplicate conversation: %s vs %s", mirrored.ConversationID, created.ConversationID)
	}

	// bob sends a message
	resp = doJSON(t, app, http.MethodPost, "/api/v1/conversations/"+created.ConversationID+"/messages", bob, map[string]string{"content": "hello alice"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send: status %d", resp.StatusCode)
	}

	// alice sees it unread with bob's profile joined
	var listed struct {
		Conversations []struct {
			ConversationID     string `json:"conversation_id"`
			LastMessagePreview string `json:"last_message_preview"`
			UnreadCount        int    `json:"unread_count"`
			OtherUser          struct {
				Name string `json:"name"`
			} `json:"other_user"`
		} `json:"conversations"`
	}
	resp = doJSON(t, app, http.MethodGet, "/api/v1/conversations", alice, nil)
	decode(t, resp, &listed)
	if len(listed.Conversations) != 1 {
		t.Fatalf("got %d conversations, want 1", len(listed.Conversations))
	}
	summary := listed.Conversations[0]
	if summary.UnreadCount != 1 || summary.LastMessagePreview != "hello alice" || summary.OtherUser.Name != "Bob" {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// marking read clears the count
	doJSON(t, app, http.MethodPost, "/api/v1/conversations/"+created.ConversationID+"/read", alice, nil)
	var unread struct {
		UnreadCount int `json:"unread_count"`
	}
	resp = doJSON(t, app, http.MethodGet, "/api/v1/conversations/"+created.ConversationID+"/unread", alice, nil)
	decode(t, resp, &unread)
	if unread.UnreadCount != 0 {
		t.Fatalf("unread after mark-read = %d, want 0", unread.UnreadCount)
	}
}

func TestTypingEndpoints(t *testing.T) {
	app := newTestApp()
	alice := signToken(t, "alice")
	bob := signToken(t, "bob")

	var created struct {
		ConversationID string `json:"conversation_id"`
	}
	resp := doJSON(t, app, http.MethodPost, "/api/v1/conversations", alice, map[string]string{"other_user_id": "bob"})
	decode(t, resp, &created)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/conversations/"+created.ConversationID+"/typing", alice, map[string]any{
		"user_name": "Alice", "is_typing": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set typing: status %d", resp.StatusCode)
	}

	var typingResp struct {
		Typing []struct {
			UserID   string `json:"user_id"`
			UserName string `json:"user_name"`
		} `json:"typing"`
	}
	resp = doJSON(t, app, http.MethodGet, "/api/v1/conversations/"+created.ConversationID+"/typing", bob, nil)
	decode(t, resp, &typingResp)
	if len(typingResp.Typing) != 1 || typingResp.Typing[0].UserName != "Alice" {
		t.Fatalf("unexpected typing list: %+v", typingResp.Typing)
	}
}
