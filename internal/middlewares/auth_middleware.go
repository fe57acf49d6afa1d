package middlewares

import (
	"crypto/subtle"
	"strings"

	"github.com/flowbaker/hubspot-executor/internal/auth"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// APIKeyMiddleware requires "Authorization: Bearer <apiKey>".
func APIKeyMiddleware(apiKey string) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			log.Warn().
				Str("path", c.Path()).
				Str("method", c.Method()).
				Msg("Rejected request with missing or invalid API key")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API key",
			})
		}

		return c.Next()
	}
}

// APISignatureMiddleware requires requests signed by the host's ed25519 key.
func APISignatureMiddleware(verifier *auth.RequestVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		signatureHeader := c.Get(auth.SignatureHeader)
		timestampHeader := c.Get(auth.TimestampHeader)

		err := verifier.Verify(c.Method(), c.Path(), signatureHeader, timestampHeader, c.Body())
		if err != nil {
			log.Error().
				Err(err).
				Str("path", c.Path()).
				Str("method", c.Method()).
				Str("timestamp", timestampHeader).
				Msg("API signature verification failed")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API signature",
			})
		}

		log.Debug().
			Str("path", c.Path()).
			Str("method", c.Method()).
			Msg("API signature verified successfully")

		return c.Next()
	}
}
