// Package api implements the HTTP handlers for the reservation service.
package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// PageParams is the parsed pagination window for list endpoints
type PageParams struct {
	Page   int
	Limit  int
	Offset int
}

// parsePageParams reads page and limit from the query string. Out-of-range
// values fall back to the defaults instead of erroring.
func parsePageParams(c *fiber.Ctx) PageParams {
	page, _ := strconv.Atoi(c.Query("page", strconv.Itoa(defaultPage)))
	if page <= 0 {
		page = defaultPage
	}

	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	return PageParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// paginated wraps a list payload with its paging envelope
func paginated(data interface{}, p PageParams, total int64) fiber.Map {
	return fiber.Map{
		"data":   data,
		"page":   p.Page,
		"limit":  p.Limit,
		"offset": p.Offset,
		"total":  total,
	}
}

// paramID parses a positive integer path parameter
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// isUniqueViolation reports whether err is a Postgres duplicate-key error
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isNoRows reports whether err means the query matched nothing
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
