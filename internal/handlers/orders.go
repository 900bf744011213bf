package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/joansfix/shop-api/internal/apperrors"
	"github.com/joansfix/shop-api/internal/auth"
	"github.com/joansfix/shop-api/internal/models"
)

// CreateOrder handles POST /orders: the transactional checkout. On success
// the order was paid, stock decremented, and everything committed; on any
// failure the transaction rolled back and nothing was stored.
func (h *Handlers) CreateOrder(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": "fail",
			"data":   gin.H{"message": "missing token, access denied"},
		})
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBadRequest(c, "invalid request body")
		return
	}

	if len(req.Items) == 0 {
		failBadRequest(c, "the shopping cart cannot be empty")
		return
	}
	if req.PaymentDetails.CardNumber == "" || req.PaymentDetails.CardHolder == "" {
		failBadRequest(c, "missing payment details (card number, cardholder)")
		return
	}

	order, err := h.checkout.Checkout(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   gin.H{"order": order},
	})
}

// ListOrders handles GET /orders: the caller's paginated order history.
func (h *Handlers) ListOrders(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": "fail",
			"data":   gin.H{"message": "missing token, access denied"},
		})
		return
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	result, err := h.orders.ListOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.logger.Error("order history lookup failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "failed to fetch order history",
		})
		return
	}

	totalPages := result.TotalItems / limit
	if result.TotalItems%limit != 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"totalItems":   result.TotalItems,
			"totalPages":   totalPages,
			"currentPage":  page,
			"itemsPerPage": limit,
			"orders":       result.Orders,
		},
	})
}

// GetOrder handles GET /orders/:id. An order owned by another user is
// indistinguishable from a missing one.
func (h *Handlers) GetOrder(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": "fail",
			"data":   gin.H{"message": "missing token, access denied"},
		})
		return
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		failBadRequest(c, "invalid order ID")
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status": "fail",
				"data":   gin.H{"message": "order not found or not owned by this user"},
			})
			return
		}
		h.logger.Error("order lookup failed",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "failed to fetch order",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"order": order},
	})
}

// handleCheckoutError maps the checkout error taxonomy onto HTTP statuses.
// Expected failures (validation, missing product, stock shortfall, payment
// rejection) are 400 with the descriptive message; unexpected persistence
// failures are 500 with a generic message, detail stays in the server log.
func (h *Handlers) handleCheckoutError(c *gin.Context, err error) {
	var persistErr *apperrors.PersistenceError
	if errors.As(err, &persistErr) {
		h.logger.Error("checkout persistence failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "internal server error",
		})
		return
	}

	failBadRequest(c, err.Error())
}

func failBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  "fail",
		"message": message,
	})
}

func queryInt(c *gin.Context, key string, defaultValue int) int {
	if raw := c.Query(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			return value
		}
	}
	return defaultValue
}
