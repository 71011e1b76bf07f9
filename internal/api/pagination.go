package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 10

// pageParams reads the `limit` page-size and `page` number query parameters.
func pageParams(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	return limit, (page - 1) * limit
}
