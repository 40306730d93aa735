package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/shoppit/backend/internal/storage"
	"github.com/shoppit/backend/internal/storage/models"
	"github.com/shoppit/backend/internal/textnorm"
	"github.com/shoppit/backend/pkg/logger"
)

// driverName is go-sqlite3 with the shop_fold SQL function registered on
// every connection, so "contains" matching folds case and accents exactly
// like the Go normalizer.
const driverName = "sqlite3_shop"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("shop_fold", textnorm.Normalize, true)
		},
	})
}

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	inMemory := dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
	if !inMemory && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if inMemory {
		// Every new connection would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if !inMemory {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		slug TEXT UNIQUE NOT NULL,
		description TEXT,
		price REAL NOT NULL DEFAULT 0,
		category TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

	CREATE TABLE IF NOT EXISTS chatbot_faqs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question TEXT UNIQUE NOT NULL,
		keywords TEXT NOT NULL DEFAULT '',
		answer TEXT NOT NULL,
		category TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_faqs_active ON chatbot_faqs(is_active);

	CREATE TABLE IF NOT EXISTS chatbot_conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT UNIQUE NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER,
		feedback INTEGER CHECK (feedback IS NULL OR feedback BETWEEN 1 AND 5)
	);

	CREATE TABLE IF NOT EXISTS chatbot_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id INTEGER NOT NULL,
		sender TEXT NOT NULL CHECK (sender IN ('user', 'bot')),
		message TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		FOREIGN KEY (conversation_id) REFERENCES chatbot_conversations(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON chatbot_messages(conversation_id);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) UpsertProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, slug, description, price, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price = excluded.price,
			category = excluded.category
		RETURNING id
	`

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	err := c.db.QueryRowContext(ctx, query,
		p.Name,
		p.Slug,
		p.Description,
		p.Price,
		p.Category,
		p.CreatedAt.Unix(),
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	logger.Debug("Product upserted", zap.Int64("product_id", p.ID), zap.String("slug", p.Slug))
	return nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT id, name, slug, COALESCE(description, ''), price, COALESCE(category, ''), created_at FROM products WHERE id = ?`

	var p models.Product
	var createdAt int64

	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.Category,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	p.CreatedAt = time.Unix(createdAt, 0)
	return &p, nil
}

func (c *Client) SearchProducts(ctx context.Context, q storage.ProductQuery) ([]models.Product, error) {
	query, args, err := buildProductSearch(q)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return nil, nil
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var createdAt int64

		err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Category, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		p.CreatedAt = time.Unix(createdAt, 0)
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

var fieldColumns = map[storage.Field]string{
	storage.FieldName:        "shop_fold(name)",
	storage.FieldDescription: "shop_fold(COALESCE(description, ''))",
	storage.FieldCategory:    "shop_fold(COALESCE(category, ''))",
}

// clauseSQL renders a contains predicate. Terms that normalize to nothing are
// skipped, since an empty needle would match every row.
func clauseSQL(cl storage.Clause) (string, string, bool, error) {
	column, ok := fieldColumns[cl.Field]
	if !ok {
		return "", "", false, fmt.Errorf("unknown product field %q", cl.Field)
	}
	term := textnorm.Normalize(cl.Term)
	if term == "" {
		return "", "", false, nil
	}
	return fmt.Sprintf("instr(%s, ?) > 0", column), term, true, nil
}

func buildProductSearch(q storage.ProductQuery) (string, []any, error) {
	var where []string
	var args []any

	var anyOf []string
	for _, cl := range q.AnyOf {
		cond, term, ok, err := clauseSQL(cl)
		if err != nil {
			return "", nil, err
		}
		if ok {
			anyOf = append(anyOf, cond)
			args = append(args, term)
		}
	}
	if len(anyOf) > 0 {
		where = append(where, "("+strings.Join(anyOf, " OR ")+")")
	}

	for _, cl := range q.AllOf {
		cond, term, ok, err := clauseSQL(cl)
		if err != nil {
			return "", nil, err
		}
		if ok {
			where = append(where, cond)
			args = append(args, term)
		}
	}

	if len(where) == 0 {
		return "", nil, nil
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, name, slug, COALESCE(description, ''), price, COALESCE(category, ''), created_at FROM products WHERE `)
	sb.WriteString(strings.Join(where, " AND "))

	var rank []string
	for _, cl := range q.Priority {
		cond, term, ok, err := clauseSQL(cl)
		if err != nil {
			return "", nil, err
		}
		if ok {
			rank = append(rank, "(CASE WHEN "+cond+" THEN 1 ELSE 0 END)")
			args = append(args, term)
		}
	}

	sb.WriteString(" ORDER BY ")
	if len(rank) > 0 {
		sb.WriteString(strings.Join(rank, " + "))
		sb.WriteString(" DESC, ")
	}
	sb.WriteString("id ASC")

	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	return sb.String(), args, nil
}

func (c *Client) ListProducts(ctx context.Context, limit int) ([]models.Product, error) {
	query := `SELECT id, name, slug, COALESCE(description, ''), price, COALESCE(category, ''), created_at FROM products ORDER BY id LIMIT ?`

	rows, err := c.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var createdAt int64

		err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Category, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		p.CreatedAt = time.Unix(createdAt, 0)
		products = append(products, p)
	}

	return products, rows.Err()
}
