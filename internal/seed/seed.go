// Package seed loads the product catalog and FAQ set into the record store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/shoppit/backend/internal/storage/models"
	"github.com/shoppit/backend/internal/textnorm"
	"github.com/shoppit/backend/pkg/logger"
)

//go:embed defaults.yaml
var defaultCatalog []byte

var whitespace = regexp.MustCompile(`\s+`)

var ErrEmptyCatalog = errors.New("catalog has no products or faqs")

type ProductSeed struct {
	Name        string  `yaml:"name"`
	Slug        string  `yaml:"slug"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
	Category    string  `yaml:"category"`
}

type FAQSeed struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Keywords string `yaml:"keywords"`
	Category string `yaml:"category"`
	// Inactive FAQs are stored but never matched.
	Inactive bool `yaml:"inactive"`
}

type Catalog struct {
	Products []ProductSeed `yaml:"products"`
	FAQs     []FAQSeed     `yaml:"faqs"`
}

// Default returns the built-in sample catalog and the Shoppit FAQ set.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Empty reports whether there is nothing to load.
func (c *Catalog) Empty() bool {
	return len(c.Products) == 0 && len(c.FAQs) == 0
}

func (c *Catalog) validate() error {
	for i, p := range c.Products {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("product %d: name is required", i)
		}
		if p.Price < 0 {
			return fmt.Errorf("product %q: price must not be negative", p.Name)
		}
	}
	for i, f := range c.FAQs {
		if strings.TrimSpace(f.Question) == "" || strings.TrimSpace(f.Answer) == "" {
			return fmt.Errorf("faq %d: question and answer are required", i)
		}
	}
	return nil
}

// Store is the part of the record store the loader writes to.
type Store interface {
	UpsertProduct(ctx context.Context, p *models.Product) error
	UpsertFAQ(ctx context.Context, f *models.FAQ) error
}

type Loader struct {
	store Store
}

func NewLoader(store Store) *Loader {
	return &Loader{store: store}
}

type Result struct {
	Products int
	FAQs     int
}

// Load upserts every product (by slug) and FAQ (by question). Descriptions
// are stripped of HTML first.
func (l *Loader) Load(ctx context.Context, c *Catalog) (Result, error) {
	var res Result
	if c.Empty() {
		return res, ErrEmptyCatalog
	}

	for _, ps := range c.Products {
		p := &models.Product{
			Name:        strings.TrimSpace(ps.Name),
			Slug:        ps.Slug,
			Description: CleanHTML(ps.Description),
			Price:       ps.Price,
			Category:    strings.TrimSpace(ps.Category),
		}
		if p.Slug == "" {
			p.Slug = Slugify(p.Name)
		}

		if err := l.store.UpsertProduct(ctx, p); err != nil {
			return res, fmt.Errorf("failed to upsert product %q: %w", p.Name, err)
		}
		res.Products++
	}

	for _, fs := range c.FAQs {
		f := &models.FAQ{
			Question: strings.TrimSpace(fs.Question),
			Answer:   strings.TrimSpace(fs.Answer),
			Keywords: fs.Keywords,
			Category: fs.Category,
			IsActive: !fs.Inactive,
		}
		if err := l.store.UpsertFAQ(ctx, f); err != nil {
			return res, fmt.Errorf("failed to upsert faq %q: %w", f.Question, err)
		}
		res.FAQs++
	}

	logger.Info("Catalog loaded",
		zap.Int("products", res.Products),
		zap.Int("faqs", res.FAQs),
	)

	return res, nil
}

// CleanHTML turns an HTML fragment into plain text. Text without markup is
// only whitespace-collapsed.
func CleanHTML(html string) string {
	if !strings.Contains(html, "<") {
		return collapse(html)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("Failed to parse description HTML", zap.Error(err))
		return collapse(html)
	}

	doc.Find("script, style, iframe, noscript").Remove()
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find("p, li, div, h1, h2, h3, h4, h5, h6, tr, td").AppendHtml(" ")

	return collapse(doc.Find("body").Text())
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Slugify builds a URL slug from a product name.
func Slugify(name string) string {
	return strings.Join(textnorm.Tokens(name), "-")
}
