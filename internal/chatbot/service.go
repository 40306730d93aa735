// Package chatbot runs the message pipeline: intent detection, product
// follow-ups, FAQ lookup, product search and response composition.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shoppit/backend/internal/conversation"
	"github.com/shoppit/backend/internal/faq"
	"github.com/shoppit/backend/internal/intent"
	"github.com/shoppit/backend/internal/lexicon"
	"github.com/shoppit/backend/internal/metrics"
	"github.com/shoppit/backend/internal/search"
	"github.com/shoppit/backend/internal/storage"
	"github.com/shoppit/backend/internal/storage/models"
	"github.com/shoppit/backend/internal/textnorm"
	"github.com/shoppit/backend/pkg/logger"
)

const (
	detailLookupLimit = 3
	minNameWordLength = 3
)

type Request struct {
	Message   string
	SessionID string
}

type Response struct {
	Response          string
	SessionID         string
	SuggestedProducts []int64
}

type Service struct {
	lex       *lexicon.Lexicon
	detector  *intent.Detector
	extractor *intent.Extractor
	expander  *search.Expander
	retriever *search.Retriever
	faqs      *faq.Matcher
	products  storage.ProductRepository
	history   conversation.Store
	recorder  storage.ConversationRecorder
	picker    Picker

	recentTurns int
}

func NewService(
	lex *lexicon.Lexicon,
	extractor *intent.Extractor,
	expander *search.Expander,
	retriever *search.Retriever,
	faqs *faq.Matcher,
	products storage.ProductRepository,
	history conversation.Store,
) *Service {
	return &Service{
		lex:         lex,
		detector:    intent.NewDetector(),
		extractor:   extractor,
		expander:    expander,
		retriever:   retriever,
		faqs:        faqs,
		products:    products,
		history:     history,
		picker:      NewRandomPicker(0),
		recentTurns: conversation.DefaultRecentTurns,
	}
}

// WithRecorder persists every exchange. Recording failures are logged only.
func (s *Service) WithRecorder(r storage.ConversationRecorder) *Service {
	s.recorder = r
	return s
}

func (s *Service) WithPicker(p Picker) *Service {
	s.picker = p
	return s
}

func (s *Service) WithRecentTurns(n int) *Service {
	if n > 0 {
		s.recentTurns = n
	}
	return s
}

// reply is a pipeline outcome before it is stored and returned.
type reply struct {
	text     string
	products []int64
	intent   intent.Intent
}

// ProcessMessage answers one chat message. It never fails: store errors
// degrade to empty results and panics become an apology.
func (s *Service) ProcessMessage(ctx context.Context, req Request) (resp Response) {
	start := time.Now()

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Chat pipeline panicked",
				zap.String("session_id", sessionID),
				zap.Any("panic", r),
			)
			metrics.PipelinePanics.Inc()
			resp = Response{
				Response:          ErrorMessage,
				SessionID:         sessionID,
				SuggestedProducts: []int64{},
			}
		}
	}()

	recent, err := s.history.Recent(ctx, sessionID, s.recentTurns)
	if err != nil {
		logger.Warn("Failed to read conversation history",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		recent = nil
	}

	userTurn := models.Turn{Role: models.RoleUser, Text: req.Message, CreatedAt: time.Now()}
	s.appendTurn(ctx, sessionID, userTurn)

	out := s.answer(ctx, req.Message, recent)
	if out.products == nil {
		out.products = []int64{}
	}

	botTurn := models.Turn{Role: models.RoleBot, Text: out.text, ProductIDs: out.products, CreatedAt: time.Now()}
	s.appendTurn(ctx, sessionID, botTurn)
	s.record(ctx, sessionID, userTurn, botTurn)

	metrics.MessagesTotal.WithLabelValues(out.intent.String()).Inc()
	metrics.MessageDuration.WithLabelValues(out.intent.String()).Observe(time.Since(start).Seconds())

	logger.Debug("Chat message processed",
		zap.String("session_id", sessionID),
		zap.String("intent", out.intent.String()),
		zap.Int("suggested_products", len(out.products)),
	)

	return Response{
		Response:          out.text,
		SessionID:         sessionID,
		SuggestedProducts: out.products,
	}
}

func (s *Service) answer(ctx context.Context, message string, recent []models.Turn) reply {
	normalized := textnorm.Normalize(message)
	detected := s.detector.DetectNormalized(normalized)

	switch detected {
	case intent.Greeting:
		return reply{text: s.picker.Pick(greetings), intent: detected}
	case intent.Farewell:
		return reply{text: s.picker.Pick(farewells), intent: detected}
	case intent.Gratitude:
		return reply{text: s.picker.Pick(gratitudes), intent: detected}
	case intent.Help:
		return reply{text: helpMessage, intent: detected}
	}

	lastBot, hasListing := conversation.LastBotTurn(recent)
	hasListing = hasListing && len(lastBot.ProductIDs) > 0

	if hasListing {
		if out, ok := s.followUp(ctx, message, lastBot.ProductIDs); ok {
			return out
		}
	}

	if answer, ok := s.faqs.Match(message); ok {
		return reply{text: answer, intent: intent.FAQ}
	}

	if detected.IsDomain() {
		return reply{text: domainAnswers[detected], intent: detected}
	}

	if query, ok := s.extractor.ExtractProductQuery(message); ok {
		products := s.retriever.FindProducts(ctx, query)
		attrs := s.expander.ExtractAttributes(message)
		return reply{
			text:     productResponse(products, query, attrs, s.lex.Attributes()),
			products: productIDs(products),
			intent:   intent.ProductSearch,
		}
	}

	// "y en azul?" after a listing refines the previous search.
	if hasListing {
		if products := s.retriever.FindProducts(ctx, message); len(products) > 0 {
			return reply{text: FormatProducts(products), products: productIDs(products), intent: intent.ProductSearch}
		}
	}

	return reply{text: s.picker.Pick(fallbacks), intent: intent.Unknown}
}

// followUp resolves "el producto 2" or "cuentame mas sobre la camiseta roja"
// against the products suggested by the previous bot turn.
func (s *Service) followUp(ctx context.Context, message string, listed []int64) (reply, bool) {
	ref, ok := s.extractor.ExtractFollowUp(message)
	if !ok {
		return reply{}, false
	}

	if ref.ByIndex() {
		if ref.Index > len(listed) {
			return reply{}, false
		}
		product, err := s.products.GetProduct(ctx, listed[ref.Index-1])
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				metrics.StoreErrors.WithLabelValues("products", "get").Inc()
			}
			logger.Warn("Failed to load listed product",
				zap.Int64("product_id", listed[ref.Index-1]),
				zap.Error(err),
			)
			return reply{}, false
		}
		return reply{
			text:     detailCard(*product, nil),
			products: []int64{product.ID},
			intent:   intent.FollowUp,
		}, true
	}

	matches := s.productsByName(ctx, ref.Name)
	if len(matches) > 0 {
		return reply{
			text:     detailCard(matches[0], matches[1:]),
			products: productIDs(matches),
			intent:   intent.FollowUp,
		}, true
	}

	similar := s.retriever.FindProducts(ctx, ref.Name)
	if len(similar) > 0 {
		return reply{text: notExactly(ref.Name, similar), products: productIDs(similar), intent: intent.FollowUp}, true
	}
	return reply{text: productNotFound(ref.Name), intent: intent.FollowUp}, true
}

// productsByName looks for products whose name holds every significant word,
// then any of them.
func (s *Service) productsByName(ctx context.Context, name string) []models.Product {
	var words []string
	for _, w := range textnorm.Tokens(name) {
		if len([]rune(w)) >= minNameWordLength {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil
	}

	for _, q := range []storage.ProductQuery{
		storage.ByNameContainsAll(words, detailLookupLimit),
		storage.ByNameContainsAny(words, detailLookupLimit),
	} {
		products, err := s.products.SearchProducts(ctx, q)
		if err != nil {
			logger.Warn("Product name lookup failed", zap.String("name", name), zap.Error(err))
			metrics.StoreErrors.WithLabelValues("products", "search").Inc()
			return nil
		}
		if len(products) > 0 {
			return products
		}
	}
	return nil
}

func (s *Service) appendTurn(ctx context.Context, sessionID string, turn models.Turn) {
	if err := s.history.Append(ctx, sessionID, turn); err != nil {
		logger.Warn("Failed to append conversation turn",
			zap.String("session_id", sessionID),
			zap.String("role", string(turn.Role)),
			zap.Error(err),
		)
		metrics.StoreErrors.WithLabelValues("history", "append").Inc()
	}
}

func (s *Service) record(ctx context.Context, sessionID string, user, bot models.Turn) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordExchange(ctx, sessionID, user, bot); err != nil {
		logger.Warn("Failed to record conversation",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		metrics.StoreErrors.WithLabelValues("conversations", "record").Inc()
	}
}

// History returns the latest n turns of a session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string, n int) ([]models.Turn, error) {
	if n <= 0 {
		n = s.recentTurns
	}
	turns, err := s.history.Recent(ctx, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return turns, nil
}
