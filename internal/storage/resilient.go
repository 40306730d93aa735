package storage

import (
	"context"
	"errors"

	"github.com/shoppit/backend/internal/storage/models"
	"github.com/shoppit/backend/pkg/circuitbreaker"
	"github.com/shoppit/backend/pkg/retry"
)

// Resilient wraps the product and FAQ repositories with retries and a
// circuit breaker per repository. Not-found and validation errors neither
// retry nor trip the breaker.
type Resilient struct {
	products ProductRepository
	faqs     FAQRepository

	productBreaker *circuitbreaker.CircuitBreaker
	faqBreaker     *circuitbreaker.CircuitBreaker
	retry          retry.Config
}

type ResilienceConfig struct {
	Retry   retry.Config
	Breaker circuitbreaker.Config
}

func NewResilient(products ProductRepository, faqs FAQRepository, cfg ResilienceConfig) *Resilient {
	cfg.Retry.Permanent = append(cfg.Retry.Permanent, ErrNotFound, ErrInvalidFeedback,
		circuitbreaker.ErrCircuitOpen, circuitbreaker.ErrTooManyRequests)

	if cfg.Breaker.IsFailure == nil {
		cfg.Breaker.IsFailure = func(err error) bool {
			return !errors.Is(err, ErrNotFound) && !errors.Is(err, context.Canceled)
		}
	}

	return &Resilient{
		products:       products,
		faqs:           faqs,
		productBreaker: circuitbreaker.NewCircuitBreaker("products", cfg.Breaker),
		faqBreaker:     circuitbreaker.NewCircuitBreaker("faqs", cfg.Breaker),
		retry:          cfg.Retry,
	}
}

func (r *Resilient) SearchProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	return retry.DoWithResult(ctx, r.retry, func(ctx context.Context) ([]models.Product, error) {
		var out []models.Product
		err := r.productBreaker.Execute(ctx, func(ctx context.Context) error {
			var err error
			out, err = r.products.SearchProducts(ctx, q)
			return err
		})
		return out, err
	})
}

func (r *Resilient) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return retry.DoWithResult(ctx, r.retry, func(ctx context.Context) (*models.Product, error) {
		var out *models.Product
		err := r.productBreaker.Execute(ctx, func(ctx context.Context) error {
			var err error
			out, err = r.products.GetProduct(ctx, id)
			return err
		})
		return out, err
	})
}

func (r *Resilient) ListActiveFAQs(ctx context.Context) ([]models.FAQ, error) {
	return retry.DoWithResult(ctx, r.retry, func(ctx context.Context) ([]models.FAQ, error) {
		var out []models.FAQ
		err := r.faqBreaker.Execute(ctx, func(ctx context.Context) error {
			var err error
			out, err = r.faqs.ListActiveFAQs(ctx)
			return err
		})
		return out, err
	})
}

func (r *Resilient) ProductBreakerState() circuitbreaker.State { return r.productBreaker.State() }

func (r *Resilient) FAQBreakerState() circuitbreaker.State { return r.faqBreaker.State() }
