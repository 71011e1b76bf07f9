package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitchenbook/backend/internal/service"
)

// respondError maps service errors onto the response taxonomy: field-keyed
// bodies for validation failures, {"error": msg} for conflicts, and a
// generic signal for not-found. Anything unanticipated is a 500.
func respondError(c *gin.Context, err error) {
	var fieldErr *service.FieldError
	switch {
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, gin.H{fieldErr.Field: fieldErr.Message})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrNotPresent),
		errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondToggleError keeps the conflict messages contextual, e.g.
// "recipe is already in favorites".
func respondToggleError(c *gin.Context, err error, target string) {
	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("recipe is already in %s", target)})
	case errors.Is(err, service.ErrNotPresent):
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("recipe is not in %s, nothing to remove", target)})
	default:
		respondError(c, err)
	}
}
