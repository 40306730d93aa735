package security

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type HeadersConfig struct {
	AllowedOrigins []string
	IsDevelopment  bool
}

func HeadersMiddleware(cfg HeadersConfig) fiber.Handler {
	csp := "default-src 'self'; " +
		"script-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data: https:; " +
		"font-src 'self' data:; " +
		"connect-src " + connectSrc(cfg.AllowedOrigins) + "; " +
		"frame-ancestors 'none'; " +
		"base-uri 'self'; " +
		"form-action 'self'"

	return func(c *fiber.Ctx) error {
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Content-Security-Policy", csp)

		if !cfg.IsDevelopment {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		return c.Next()
	}
}

// CORS allows the storefront origins to call the chat API. With no origins
// configured every origin is allowed in development and none otherwise.
func CORS(cfg HeadersConfig) fiber.Handler {
	origins := strings.Join(cfg.AllowedOrigins, ",")
	if origins == "" {
		if !cfg.IsDevelopment {
			return func(c *fiber.Ctx) error { return c.Next() }
		}
		origins = "*"
	}

	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, X-Session-ID",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: "Retry-After",
	})
}

func connectSrc(origins []string) string {
	parts := append([]string{"'self'"}, origins...)
	return strings.Join(parts, " ")
}
