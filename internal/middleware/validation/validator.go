package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	DefaultMaxMessageLength = 1000
	maxSessionIDLength      = 128
	chatMessageKey          = "chat_message"
)

var (
	scriptPattern    = regexp.MustCompile(`(?i)(<\s*script|<\s*iframe|javascript:|vbscript:|on(?:error|load|click|mouseover)\s*=)`)
	sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)
)

var (
	ErrMessageRequired  = errors.New("message is required")
	ErrMessageTooLong   = errors.New("message exceeds maximum length")
	ErrMessageContent   = errors.New("message contains forbidden content")
	ErrInvalidSessionID = errors.New("invalid session_id")
)

// ChatMessage is the inbound chat payload.
type ChatMessage struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type Config struct {
	MaxMessageLength int
	// Paths lists the chat endpoints whose bodies are validated.
	Paths  []string
	Logger *zap.Logger
}

// CheckMessage validates and sanitizes a chat message. It is shared by the
// HTTP middleware and the websocket handler.
func CheckMessage(msg ChatMessage, maxLength int) (ChatMessage, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxMessageLength
	}

	msg.Message = sanitizeString(msg.Message)
	msg.SessionID = strings.TrimSpace(msg.SessionID)

	if msg.Message == "" {
		return msg, ErrMessageRequired
	}
	if utf8.RuneCountInString(msg.Message) > maxLength {
		return msg, ErrMessageTooLong
	}
	if scriptPattern.MatchString(msg.Message) {
		return msg, ErrMessageContent
	}
	if msg.SessionID != "" && (len(msg.SessionID) > maxSessionIDLength || !sessionIDPattern.MatchString(msg.SessionID)) {
		return msg, ErrInvalidSessionID
	}
	return msg, nil
}

func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = DefaultMaxMessageLength
	}
	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{"/api/v1/chatbot/message"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost || !matchesPath(c.Path(), cfg.Paths) {
			return c.Next()
		}

		if ct := c.Get(fiber.HeaderContentType); ct != "" && !strings.HasPrefix(ct, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Unsupported content type",
			})
		}

		var req ChatMessage
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON format",
			})
		}

		req, err := CheckMessage(req, cfg.MaxMessageLength)
		if err != nil {
			if errors.Is(err, ErrMessageContent) {
				cfg.Logger.Warn("Potential script injection attempt",
					zap.String("ip", c.IP()),
					zap.String("path", c.Path()),
				)
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals(chatMessageKey, req)
		return c.Next()
	}
}

// Validated returns the message checked by Middleware for this request.
func Validated(c *fiber.Ctx) (ChatMessage, bool) {
	msg, ok := c.Locals(chatMessageKey).(ChatMessage)
	return msg, ok
}

func matchesPath(path string, paths []string) bool {
	for _, p := range paths {
		if path == p {
			return true
		}
	}
	return false
}

func sanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}
