package server

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"socialfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given
// default limit. Absent parameters fall back to defaults; present but
// non-integer, zero or negative values are a validation failure: a 400 JSON
// response is written and errResponseWritten returned.
// Callers should check: if err != nil { return nil }
func parsePagination(c *fiber.Ctx, defaultLimit int) (Pagination, error) {
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil || limit <= 0 {
		return Pagination{}, paginationError(c)
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		return Pagination{}, paginationError(c)
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}, nil
}

// queryInt parses an optional integer query parameter, distinguishing an
// absent value (default) from a malformed one (error).
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func paginationError(c *fiber.Ctx) error {
	_ = models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError("Invalid pagination parameters"))
	return errResponseWritten
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// respondAppError maps an AppError code to the right HTTP status.
func respondAppError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "NOT_FOUND":
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		case "VALIDATION_ERROR":
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		case "UNAUTHORIZED":
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		}
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}
