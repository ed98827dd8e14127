package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// getCart serves the session cart joined against live products.
func (h *Handler) getCart(c *gin.Context) {
	view, err := h.cart.View(c.Request.Context(), h.session(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// addCartItem adds quantity units of a product to the cart.
func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sess := h.session(c)
	if err := h.cart.Add(c.Request.Context(), sess, req.ProductID, req.Quantity); err != nil {
		h.respondError(c, err)
		return
	}

	view, err := h.cart.View(c.Request.Context(), sess)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// updateCartItem sets a line's quantity; zero or less removes the line.
func (h *Handler) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sess := h.session(c)
	if err := h.cart.Update(c.Request.Context(), sess, c.Param("productId"), req.Quantity); err != nil {
		h.respondError(c, err)
		return
	}

	view, err := h.cart.View(c.Request.Context(), sess)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// removeCartItem deletes a line from the cart.
func (h *Handler) removeCartItem(c *gin.Context) {
	sess := h.session(c)
	h.cart.Remove(sess, c.Param("productId"))

	view, err := h.cart.View(c.Request.Context(), sess)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// clearCart empties the cart.
func (h *Handler) clearCart(c *gin.Context) {
	h.cart.Clear(h.session(c))
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
