package handlers

import (
	"time"

	"github.com/shoppit/backend/internal/storage/models"
)

type productDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

func toProductDTO(p models.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
	}
}

func toProductDTOs(products []models.Product) []productDTO {
	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	return out
}

type faqDTO struct {
	ID       int64    `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords"`
	Category string   `json:"category"`
}

type turnDTO struct {
	Role              models.Role `json:"role"`
	Text              string      `json:"text"`
	SuggestedProducts []int64     `json:"suggested_products"`
	Timestamp         time.Time   `json:"timestamp"`
}

func toTurnDTOs(turns []models.Turn) []turnDTO {
	out := make([]turnDTO, 0, len(turns))
	for _, t := range turns {
		ids := t.ProductIDs
		if ids == nil {
			ids = []int64{}
		}
		out = append(out, turnDTO{Role: t.Role, Text: t.Text, SuggestedProducts: ids, Timestamp: t.CreatedAt})
	}
	return out
}
