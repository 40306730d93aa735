package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/shoppit/backend/internal/faq"
	"github.com/shoppit/backend/internal/storage"
	"github.com/shoppit/backend/pkg/logger"
)

type FAQHandler struct {
	matcher *faq.Matcher
	repo    storage.FAQRepository
}

func NewFAQHandler(matcher *faq.Matcher, repo storage.FAQRepository) *FAQHandler {
	return &FAQHandler{
		matcher: matcher,
		repo:    repo,
	}
}

func (h *FAQHandler) List(c *fiber.Ctx) error {
	faqs, err := h.repo.ListActiveFAQs(c.UserContext())
	if err != nil {
		logger.Error("Failed to list FAQs", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "FAQ store unavailable",
		})
	}

	out := make([]faqDTO, 0, len(faqs))
	for _, f := range faqs {
		out = append(out, faqDTO{
			ID:       f.ID,
			Question: f.Question,
			Answer:   f.Answer,
			Keywords: faq.ParseKeywords(f.Keywords),
			Category: f.Category,
		})
	}

	return c.JSON(fiber.Map{
		"faqs": out,
	})
}

func (h *FAQHandler) Reload(c *fiber.Ctx) error {
	if err := h.matcher.Reload(c.UserContext()); err != nil {
		logger.Error("Failed to reload FAQs", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "FAQ reload failed",
			"faqs":  h.matcher.Size(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "FAQs reloaded",
		"faqs":    h.matcher.Size(),
	})
}
