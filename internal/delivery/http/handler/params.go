// Package handler holds the HTTP endpoint handlers for the query API.
package handler

import (
	"fmt"
	"strconv"
	"strings"

	"arbetsdata/internal/cache"
	"arbetsdata/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("query param %q must be an integer", key)
	}
	return n, nil
}

func cacheKey(c fiber.Ctx) string {
	return "api:" + c.OriginalURL()
}

// serveCached replies from the cache when possible, otherwise loads, caches
// and replies. Cache failures degrade to a plain load.
func serveCached[T any](c fiber.Ctx, r *cache.Redis, load func() (T, error)) error {
	key := cacheKey(c)

	var cached T
	if hit, err := r.GetJSON(c.Context(), key, &cached); err == nil && hit {
		return response.Success(c, fiber.StatusOK, response.MessageOK, cached)
	}

	out, err := load()
	if err != nil {
		return err
	}
	_ = r.SetJSON(c.Context(), key, out, cache.DefaultTTL)
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
