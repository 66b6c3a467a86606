package httpapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/shop/internal/listing"
)

// listingQuery читает page, per_page, sort_by, order и q. Значения проверяет сервис;
// здесь отсекаются только нечисловые page и per_page.
func listingQuery(c *gin.Context) (listing.Query, error) {
	page, err := intParam(c, "page")
	if err != nil {
		return listing.Query{}, err
	}
	perPage, err := intParam(c, "per_page")
	if err != nil {
		return listing.Query{}, err
	}
	return listing.Query{
		Page:      page,
		PerPage:   perPage,
		SortBy:    c.Query("sort_by"),
		Direction: listing.Direction(c.Query("order")),
		Filter:    c.Query("q"),
	}, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", listing.ErrInvalidQuery, name)
	}
	// 0 внутри Query означает "по умолчанию", поэтому явный ноль отклоняется здесь.
	if v == 0 {
		return 0, fmt.Errorf("%w: %s must be >= 1", listing.ErrInvalidQuery, name)
	}
	return v, nil
}

// pathID разбирает положительный числовой идентификатор из пути.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
