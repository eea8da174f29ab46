package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/chat-app/services/dm-service/internal/apperrors"
	"github.com/yourorg/chat-app/services/dm-service/internal/events"
)

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperrors.ErrBadRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

type syncUserReq struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ImageURL   string `json:"image_url"`
}

func (s *Server) syncUser(c *fiber.Ctx) error {
	var req syncUserReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperrors.ErrBadRequest)
	}
	u, err := s.users.Sync(c.Context(), req.ExternalID, req.Name, req.Email, req.ImageURL)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(u)
}

func (s *Server) listUsers(c *fiber.Ctx) error {
	out, err := s.users.ListOthers(c.Context(), callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"users": out})
}

type presenceReq struct {
	IsOnline bool `json:"is_online"`
}

func (s *Server) setPresence(c *fiber.Ctx) error {
	var req presenceReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperrors.ErrBadRequest)
	}
	uid := callerID(c)
	if err := s.users.SetOnline(c.Context(), uid, req.IsOnline); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

type createConversationReq struct {
	OtherUserID string `json:"other_user_id"`
}

func (s *Server) getOrCreateConversation(c *fiber.Ctx) error {
	var req createConversationReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperrors.ErrBadRequest)
	}
	conv, err := s.convs.GetOrCreate(c.Context(), callerID(c), req.OtherUserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"conversation_id": conv.ID})
}

func (s *Server) listConversations(c *fiber.Ctx) error {
	out, err := s.convs.ListForUser(c.Context(), callerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"conversations": out})
}

func (s *Server) markRead(c *fiber.Ctx) error {
	if err := s.convs.MarkRead(c.Context(), callerID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) unreadCount(c *fiber.Ctx) error {
	n, err := s.convs.UnreadCount(c.Context(), callerID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": n})
}

type sendMessageReq struct {
	Content string `json:"content"`
}

func (s *Server) sendMessage(c *fiber.Ctx) error {
	var req sendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperrors.ErrBadRequest)
	}
	msg, conv, err := s.msgs.Send(c.Context(), callerID(c), c.Params("id"), req.Content)
	if err != nil {
		return fail(c, err)
	}
	s.hub.Notify(
		[]string{conv.ParticipantOne, conv.ParticipantTwo},
		events.Event{Type: events.TypeMessageSent, ConversationID: conv.ID, UserID: msg.SenderID, OccurredAt: msg.CreatedAt},
	)
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (s *Server) listMessages(c *fiber.Ctx) error {
	out, err := s.msgs.List(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"messages": out})
}

type typingReq struct {
	UserName string `json:"user_name"`
	IsTyping bool   `json:"is_typing"`
}

func (s *Server) setTyping(c *fiber.Ctx) error {
	var req typingReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperrors.ErrBadRequest)
	}
	if err := s.typing.Set(c.Context(), callerID(c), c.Params("id"), req.UserName, req.IsTyping); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) listTyping(c *fiber.Ctx) error {
	out, err := s.typing.List(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"typing": out})
}
