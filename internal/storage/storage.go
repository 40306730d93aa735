// Package storage declares the record-store contracts the chatbot core
// consumes and the typed query builders used to talk to them.
package storage

import (
	"context"
	"errors"

	"github.com/shoppit/backend/internal/storage/models"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidFeedback = errors.New("feedback must be between 1 and 5")
)

// Field is a searchable product column.
type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldCategory    Field = "category"
)

// Clause is a case- and accent-insensitive "field contains term" predicate.
type Clause struct {
	Field Field
	Term  string
}

// ProductQuery selects products matching any clause of AnyOf and every clause
// of AllOf. Empty groups impose no restriction, but a query with both groups
// empty matches nothing. Priority clauses never filter: products satisfying
// more of them are returned first.
type ProductQuery struct {
	AnyOf    []Clause
	AllOf    []Clause
	Priority []Clause
	Limit    int
}

func (q ProductQuery) Empty() bool {
	return len(q.AnyOf) == 0 && len(q.AllOf) == 0
}

// ByNameOrDescriptionContains matches products whose name or description
// contains any of terms.
func ByNameOrDescriptionContains(terms []string, limit int) ProductQuery {
	q := ProductQuery{Limit: limit}
	for _, t := range terms {
		q.AnyOf = append(q.AnyOf, Clause{FieldName, t}, Clause{FieldDescription, t})
	}
	return q
}

func ByCategoryContains(name string, limit int) ProductQuery {
	return ProductQuery{AnyOf: []Clause{{FieldCategory, name}}, Limit: limit}
}

func ByNameContainsAll(words []string, limit int) ProductQuery {
	q := ProductQuery{Limit: limit}
	for _, w := range words {
		q.AllOf = append(q.AllOf, Clause{FieldName, w})
	}
	return q
}

func ByNameContainsAny(words []string, limit int) ProductQuery {
	q := ProductQuery{Limit: limit}
	for _, w := range words {
		q.AnyOf = append(q.AnyOf, Clause{FieldName, w})
	}
	return q
}

// WithPriority returns a copy of q that ranks products matching clauses first.
func (q ProductQuery) WithPriority(clauses ...Clause) ProductQuery {
	q.Priority = append(append([]Clause(nil), q.Priority...), clauses...)
	return q
}

type ProductRepository interface {
	SearchProducts(ctx context.Context, q ProductQuery) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

type FAQRepository interface {
	ListActiveFAQs(ctx context.Context) ([]models.FAQ, error)
}

// ConversationRecorder is the optional durable sink for chat exchanges. The
// core never depends on it for correctness.
type ConversationRecorder interface {
	RecordExchange(ctx context.Context, sessionID string, user, bot models.Turn) error
}
