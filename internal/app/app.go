// Package app assembles the chatbot from configuration. It is shared by the
// API server and the admin CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shoppit/backend/internal/api/handlers"
	"github.com/shoppit/backend/internal/cache/redis"
	"github.com/shoppit/backend/internal/chatbot"
	"github.com/shoppit/backend/internal/conversation"
	"github.com/shoppit/backend/internal/faq"
	"github.com/shoppit/backend/internal/fuzzy"
	"github.com/shoppit/backend/internal/intent"
	"github.com/shoppit/backend/internal/lexicon"
	"github.com/shoppit/backend/internal/metrics"
	"github.com/shoppit/backend/internal/search"
	"github.com/shoppit/backend/internal/storage"
	"github.com/shoppit/backend/internal/storage/sqlite"
	"github.com/shoppit/backend/pkg/circuitbreaker"
	"github.com/shoppit/backend/pkg/config"
	"github.com/shoppit/backend/pkg/logger"
	"github.com/shoppit/backend/pkg/retry"
)

type App struct {
	Config *config.Config

	DB          *sqlite.Client
	Redis       *redis.Client
	SearchCache *redis.SearchCache
	Store       *storage.Resilient

	Lexicon   *lexicon.Lexicon
	Retriever *search.Retriever
	FAQs      *faq.Matcher
	Chatbot   *chatbot.Service
}

// New opens the record store and builds the pipeline. When Redis is enabled
// but unreachable, history stays in memory and searches are not cached.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	lex := lexicon.Default()
	if cfg.Lexicon.Path != "" {
		var err error
		if lex, err = lexicon.LoadFile(cfg.Lexicon.Path); err != nil {
			return nil, fmt.Errorf("failed to load lexicon: %w", err)
		}
		logger.Info("Lexicon loaded", zap.String("path", cfg.Lexicon.Path))
	}

	db, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite client: %w", err)
	}
	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	a := &App{Config: cfg, DB: db, Lexicon: lex}

	a.Store = storage.NewResilient(db, db, storage.ResilienceConfig{
		Retry: retry.Config{
			MaxAttempts:  3,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     time.Second,
			Logger:       logger.Named("retry"),
		},
		Breaker: circuitbreaker.Config{
			OpenTimeout:      30 * time.Second,
			FailureThreshold: 5,
			OnStateChange: func(name string, _, to circuitbreaker.State) {
				metrics.CircuitState.WithLabelValues(name).Set(float64(to))
			},
			Logger: logger.Named("circuitbreaker"),
		},
	})

	var history conversation.Store = conversation.NewMemoryStore(cfg.Chatbot.HistoryLimit)
	if cfg.Redis.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		rc, err := redis.Connect(ctx, addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis unavailable, keeping history in memory", zap.Error(err))
		} else {
			a.Redis = rc
			a.SearchCache = redis.NewSearchCache(rc, time.Duration(cfg.Cache.SearchTTLSeconds)*time.Second)
			history = redis.NewConversationStore(rc, cfg.Chatbot.HistoryLimit, 24*time.Hour)
		}
	}

	corrector := fuzzy.NewCorrector(lex, cfg.Chatbot.SimilarityThreshold)
	expander := search.NewExpander(lex, corrector)
	a.Retriever = search.NewRetriever(lex, corrector, expander, a.Store, search.Options{
		MaxResults: cfg.Chatbot.MaxResults,
		MinResults: cfg.Chatbot.MinResults,
	})
	if a.SearchCache != nil {
		a.Retriever.WithCache(a.SearchCache)
	}

	a.FAQs = faq.NewMatcher(a.Store)

	a.Chatbot = chatbot.NewService(lex, intent.NewExtractor(lex, corrector), expander, a.Retriever, a.FAQs, a.Store, history).
		WithRecorder(db).
		WithPicker(chatbot.NewPicker(cfg.Chatbot.ResponsePicker, cfg.Chatbot.Seed)).
		WithRecentTurns(cfg.Chatbot.RecentTurns)

	return a, nil
}

// LoadFAQs fills the FAQ index, retrying transient failures. When every
// attempt fails the index stays empty and the chatbot answers without FAQs.
func (a *App) LoadFAQs(ctx context.Context) error {
	attempts := a.Config.FAQ.LoadAttempts
	if attempts <= 0 {
		attempts = 1
	}

	err := retry.Do(ctx, retry.Config{
		MaxAttempts:  attempts,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Logger:       logger.Named("faq-load"),
	}, a.FAQs.Reload)
	if err != nil {
		logger.Error("Failed to load FAQs, continuing without them", zap.Error(err))
		return err
	}
	return nil
}

func (a *App) Handlers() handlers.Handlers {
	deps := map[string]handlers.Pinger{"sqlite": a.DB}
	if a.Redis != nil {
		deps["redis"] = a.Redis
	}

	maxLen := a.Config.Chatbot.MaxMessageLength

	return handlers.Handlers{
		Chatbot:   handlers.NewChatbotHandler(a.Chatbot, a.DB, maxLen),
		Products:  handlers.NewProductHandler(a.Retriever, a.Store),
		FAQs:      handlers.NewFAQHandler(a.FAQs, a.Store),
		Health:    handlers.NewHealthHandler(deps),
		WebSocket: handlers.NewWebSocketHandler(a.Chatbot, maxLen),
	}
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	if err := a.DB.Close(); err != nil {
		logger.Warn("Failed to close SQLite client", zap.Error(err))
	}
}
