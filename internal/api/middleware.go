package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"

	"github.com/p-blackswan/studyhub/internal/auth"
	"github.com/p-blackswan/studyhub/internal/metrics"
	"github.com/p-blackswan/studyhub/internal/requestid"
)

const (
	localUserID    = "user_id"
	localRequestID = "request_id"
)

func isProbePath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

// currentUser returns the authenticated user id set by the auth middleware.
func currentUser(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

// requestIDMiddleware reuses the caller's X-Request-ID or mints a new one.
func requestIDMiddleware(c *fiber.Ctx) error {
	ctx, reqID := requestid.Accept(c.UserContext(), utils.CopyString(c.Get(requestid.Header)))
	c.SetUserContext(ctx)
	c.Set(requestid.Header, reqID)
	c.Locals(localRequestID, reqID)
	return c.Next()
}

// NewAuthMiddleware verifies the bearer token on every non-probe request.
func NewAuthMiddleware(verifier *auth.Verifier, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if isProbePath(path) || c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		token, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		userID, err := verifier.UserID(token)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("path", path).
				Str("method", c.Method()).
				Msg("unauthorized request: invalid token")
			return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		c.Locals(localUserID, userID)
		return c.Next()
	}
}

// accessLog logs each request after it completes and records its metrics.
func accessLog(m *metrics.Metrics, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		path := c.Path()
		if isProbePath(path) {
			return nil
		}
		status := c.Response().StatusCode()
		elapsed := time.Since(started)

		route := c.Route().Path
		if m != nil {
			m.RecordRequest(route, c.Method(), strconv.Itoa(status), elapsed.Seconds())
		}

		evt := logger.Info()
		if status >= fiber.StatusInternalServerError {
			evt = logger.Error()
		}
		evt.Str("method", c.Method()).
			Str("path", path).
			Int("status", status).
			Dur("duration", elapsed).
			Str("ip", c.IP()).
			Str("user_id", currentUser(c)).
			Str("request_id", requestid.FromContext(c.UserContext())).
			Msg("api request")
		return nil
	}
}
