package sqlite

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shoppit/backend/internal/storage/models"
	"github.com/shoppit/backend/pkg/logger"
)

func (c *Client) UpsertFAQ(ctx context.Context, f *models.FAQ) error {
	query := `
		INSERT INTO chatbot_faqs (question, keywords, answer, category, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(question) DO UPDATE SET
			keywords = excluded.keywords,
			answer = excluded.answer,
			category = excluded.category,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
		RETURNING id
	`

	now := time.Now()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now

	active := 0
	if f.IsActive {
		active = 1
	}

	err := c.db.QueryRowContext(ctx, query,
		f.Question,
		f.Keywords,
		f.Answer,
		f.Category,
		active,
		f.CreatedAt.Unix(),
		f.UpdatedAt.Unix(),
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert faq: %w", err)
	}

	logger.Debug("FAQ upserted", zap.Int64("faq_id", f.ID), zap.String("category", f.Category))
	return nil
}

func (c *Client) ListActiveFAQs(ctx context.Context) ([]models.FAQ, error) {
	return c.listFAQs(ctx, `WHERE is_active = 1`)
}

func (c *Client) ListFAQs(ctx context.Context) ([]models.FAQ, error) {
	return c.listFAQs(ctx, "")
}

func (c *Client) listFAQs(ctx context.Context, where string) ([]models.FAQ, error) {
	query := `SELECT id, question, keywords, answer, COALESCE(category, ''), is_active, created_at, updated_at FROM chatbot_faqs ` + where + ` ORDER BY id`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}
	defer rows.Close()

	var faqs []models.FAQ
	for rows.Next() {
		var f models.FAQ
		var active int
		var createdAt, updatedAt int64

		err := rows.Scan(&f.ID, &f.Question, &f.Keywords, &f.Answer, &f.Category, &active, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		f.IsActive = active == 1
		f.CreatedAt = time.Unix(createdAt, 0)
		f.UpdatedAt = time.Unix(updatedAt, 0)
		faqs = append(faqs, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate faqs: %w", err)
	}

	return faqs, nil
}
