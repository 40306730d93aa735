package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type Handlers struct {
	Chatbot   *ChatbotHandler
	Products  *ProductHandler
	FAQs      *FAQHandler
	Health    *HealthHandler
	WebSocket *WebSocketHandler
}

// Register mounts the API under /api/v1 and the chat socket at /ws/chat.
func (h Handlers) Register(app fiber.Router) {
	api := app.Group("/api/v1")

	api.Post("/chatbot/message", h.Chatbot.HandleMessage)
	api.Get("/chatbot/history", h.Chatbot.GetHistory)
	api.Post("/chatbot/conversations/:session_id/feedback", h.Chatbot.SubmitFeedback)

	api.Get("/products", h.Products.Search)
	api.Get("/products/:id", h.Products.Get)

	api.Get("/faqs", h.FAQs.List)
	api.Post("/faqs/reload", h.FAQs.Reload)

	api.Get("/health", h.Health.Health)
	api.Get("/ready", h.Health.Ready)

	if h.WebSocket != nil {
		app.Get("/ws/chat", h.WebSocket.Upgrade, websocket.New(h.WebSocket.HandleConnection))
	}
}
