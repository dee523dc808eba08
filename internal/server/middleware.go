package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// ZstdMiddleware decodes zstd request bodies and zstd-encodes responses for
// clients that accept it. Paths for which skip returns true pass through.
func ZstdMiddleware(skip func(path string) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skip != nil && skip(c.Path()) {
			return c.Next()
		}

		// Ctx.Body would try to decode the content encoding itself and reject zstd
		raw := c.Request().Body()
		if strings.EqualFold(c.Get(fiber.HeaderContentEncoding), "zstd") && len(raw) > 0 {
			decoder, err := zstd.NewReader(bytes.NewReader(raw))
			if err != nil {
				log.Err(err).Msg("Failed to create zstd decoder")
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to decompress zstd body: %s", err))
			}
			decompressed, err := io.ReadAll(decoder)
			decoder.Close()
			if err != nil {
				log.Err(err).Msg("Failed to decompress request")
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to decompress zstd body: %s", err))
			}
			c.Request().SetBody(decompressed)
			c.Request().Header.Del(fiber.HeaderContentEncoding)
		}

		if err := c.Next(); err != nil {
			return err
		}

		if !strings.Contains(strings.ToLower(c.Get(fiber.HeaderAcceptEncoding)), "zstd") {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			log.Err(err).Msg("Failed to create zstd encoder")
			return nil
		}
		defer encoder.Close()

		compressed := encoder.EncodeAll(body, nil)
		c.Response().SetBody(compressed)
		c.Set(fiber.HeaderContentEncoding, "zstd")
		c.Set(fiber.HeaderContentLength, fmt.Sprintf("%d", len(compressed)))
		log.Trace().Int("original_size", len(body)).Int("compressed_size", len(compressed)).Msg("Response body compressed")
		return nil
	}
}

// RequestContextMiddleware gives every request a user context derived from
// base. It is cancelled when the handler chain returns or when base is, so
// model calls stop on server shutdown. fasthttp does not report client
// disconnects, so those still run to their own timeout.
func RequestContextMiddleware(base context.Context) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithCancel(base)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RequestIDMiddleware reuses the caller's X-Request-Id or mints one, echoes it
// back and logs one line per request.
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := strings.TrimSpace(c.Get(RequestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(requestIDLocal, rid)
		c.Set(RequestIDHeader, rid)

		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the error handler set the final status before logging
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		log.Info().
			Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("request")
		return nil
	}
}

func requestID(c *fiber.Ctx) string {
	rid, _ := c.Locals(requestIDLocal).(string)
	return rid
}

// passthroughPath lists the routes whose bodies are files or trivially small.
func passthroughPath(path string) bool {
	return path == "/" || path == "/health" ||
		strings.HasPrefix(path, "/runs") || strings.HasPrefix(path, "/static")
}
