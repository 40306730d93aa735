package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/shoppit/backend/internal/chatbot"
	"github.com/shoppit/backend/internal/metrics"
	"github.com/shoppit/backend/internal/middleware/validation"
	"github.com/shoppit/backend/pkg/logger"
)

type WebSocketHandler struct {
	service          *chatbot.Service
	maxMessageLength int
}

func NewWebSocketHandler(service *chatbot.Service, maxMessageLength int) *WebSocketHandler {
	return &WebSocketHandler{
		service:          service,
		maxMessageLength: maxMessageLength,
	}
}

// Upgrade rejects plain HTTP requests on the websocket route.
func (h *WebSocketHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

type wsMessage struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	SessionID string `json:"session_id"`
}

// HandleConnection serves one chat connection. A connection keeps the
// session id of its last answer unless the client sends another.
func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")
	metrics.ActiveWebsockets.Inc()

	defer func() {
		c.Close()
		metrics.ActiveWebsockets.Dec()
		logger.Info("WebSocket connection closed")
	}()

	sessionID := ""
	for {
		var msg wsMessage
		if err := c.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Error("Failed to read WebSocket message", zap.Error(err))
			}
			return
		}

		if msg.Type != "message" {
			continue
		}
		if msg.SessionID == "" {
			msg.SessionID = sessionID
		}

		checked, err := validation.CheckMessage(validation.ChatMessage{Message: msg.Content, SessionID: msg.SessionID}, h.maxMessageLength)
		if err != nil {
			h.sendError(c, err.Error())
			continue
		}

		resp := h.service.ProcessMessage(context.Background(), chatbot.Request{
			Message:   checked.Message,
			SessionID: checked.SessionID,
		})
		sessionID = resp.SessionID

		if err := h.streamResponse(c, resp); err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			return
		}
	}
}

func (h *WebSocketHandler) streamResponse(c *websocket.Conn, resp chatbot.Response) error {
	words := splitIntoWords(resp.Response)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 && word != "\n" {
			chunk += " "
		}
		if err := h.sendChunk(c, chunk); err != nil {
			return err
		}
	}

	return c.WriteJSON(map[string]interface{}{
		"type":               "complete",
		"session_id":         resp.SessionID,
		"suggested_products": resp.SuggestedProducts,
	})
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    "chunk",
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}

// splitIntoWords breaks text on spaces, keeping each newline as its own
// chunk so markdown listings survive streaming.
func splitIntoWords(text string) []string {
	words := []string{}
	current := []rune{}

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for _, r := range text {
		switch r {
		case ' ':
			flush()
		case '\n':
			flush()
			words = append(words, "\n")
		default:
			current = append(current, r)
		}
	}
	flush()

	return words
}
