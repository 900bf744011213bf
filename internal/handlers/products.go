package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListProducts handles GET /products: the public, unauthenticated catalog
// listing.
func (h *Handlers) ListProducts(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)
	if limit > 100 {
		limit = 100
	}

	products, total, err := h.products.ListProducts(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		h.logger.Error("product listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "failed to fetch products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"totalItems":  total,
			"currentPage": page,
			"products":    products,
		},
	})
}
