package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/shoppit/backend/internal/chatbot"
	"github.com/shoppit/backend/internal/conversation"
	"github.com/shoppit/backend/internal/metrics"
	"github.com/shoppit/backend/internal/middleware/validation"
	"github.com/shoppit/backend/internal/storage"
	"github.com/shoppit/backend/pkg/logger"
)

// FeedbackStore stores a 1-5 rating for a recorded conversation.
type FeedbackStore interface {
	SetFeedback(ctx context.Context, sessionID string, rating int) error
}

type ChatbotHandler struct {
	service          *chatbot.Service
	feedback         FeedbackStore
	maxMessageLength int
}

func NewChatbotHandler(service *chatbot.Service, feedback FeedbackStore, maxMessageLength int) *ChatbotHandler {
	return &ChatbotHandler{
		service:          service,
		feedback:         feedback,
		maxMessageLength: maxMessageLength,
	}
}

func (h *ChatbotHandler) HandleMessage(c *fiber.Ctx) error {
	req, ok := validation.Validated(c)
	if !ok {
		if err := c.BodyParser(&req); err != nil {
			logger.Error("Failed to parse request body", zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		var err error
		if req, err = validation.CheckMessage(req, h.maxMessageLength); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	resp := h.service.ProcessMessage(c.UserContext(), chatbot.Request{
		Message:   req.Message,
		SessionID: req.SessionID,
	})

	return c.JSON(fiber.Map{
		"response":           resp.Response,
		"session_id":         resp.SessionID,
		"suggested_products": resp.SuggestedProducts,
	})
}

func (h *ChatbotHandler) GetHistory(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	limit := c.QueryInt("limit", conversation.DefaultHistoryLimit)
	limit = min(max(limit, 1), conversation.DefaultHistoryLimit)

	turns, err := h.service.History(c.UserContext(), sessionID, limit)
	if err != nil {
		logger.Error("Failed to read history", zap.String("session_id", sessionID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read history",
		})
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"turns":      toTurnDTOs(turns),
	})
}

func (h *ChatbotHandler) SubmitFeedback(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	var req struct {
		Feedback int `json:"feedback"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	err := h.feedback.SetFeedback(c.UserContext(), sessionID, req.Feedback)
	switch {
	case errors.Is(err, storage.ErrInvalidFeedback):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "feedback must be between 1 and 5",
		})
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Conversation not found",
		})
	case err != nil:
		logger.Error("Failed to store feedback", zap.String("session_id", sessionID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store feedback",
		})
	}

	metrics.ConversationFeedback.Observe(float64(req.Feedback))

	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"feedback":   req.Feedback,
	})
}
