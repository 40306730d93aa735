package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/shoppit/backend/internal/search"
	"github.com/shoppit/backend/internal/storage"
	"github.com/shoppit/backend/pkg/logger"
)

type ProductHandler struct {
	retriever *search.Retriever
	products  storage.ProductRepository
}

func NewProductHandler(retriever *search.Retriever, products storage.ProductRepository) *ProductHandler {
	return &ProductHandler{
		retriever: retriever,
		products:  products,
	}
}

func (h *ProductHandler) Search(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}

	products := h.retriever.FindProducts(c.UserContext(), q)

	body := fiber.Map{
		"query":    q,
		"count":    len(products),
		"products": toProductDTOs(products),
	}
	if c.QueryBool("explain") {
		plan := h.retriever.Explain(q)
		body["plan"] = fiber.Map{
			"search_terms": plan.SearchTerms,
			"expanded":     plan.Expanded,
			"categories":   plan.Categories,
			"attributes":   plan.Attributes,
		}
	}

	return c.JSON(body)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid product id",
		})
	}

	product, err := h.products.GetProduct(c.UserContext(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Product not found",
		})
	}
	if err != nil {
		logger.Error("Failed to get product", zap.Int64("product_id", id), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Product store unavailable",
		})
	}

	return c.JSON(toProductDTO(*product))
}
