package controllers

import (
	"net/http"

	"farmconnect/models"
	"farmconnect/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

// GetCart godoc
// @Summary Get cart
// @Description Cart entries grouped by seller with subtotals and total
// @Tags Cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	view, err := ctrl.carts.View(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, "Failed to fetch cart", err)
		return
	}
	respond(c, http.StatusOK, "Cart retrieved successfully", view)
}

// AddToCart godoc
// @Summary Add to cart
// @Description Adding a product already in the cart increases its quantity
// @Tags Cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AddToCartRequest true "Item"
// @Success 200 {object} models.Response{data=models.CartView}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := ctrl.carts.AddItem(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		respondError(c, "Failed to add to cart", err)
		return
	}
	respond(c, http.StatusOK, "Item added to cart", view)
}

// UpdateCartItem godoc
// @Summary Update cart quantity
// @Description Quantities below 1 are ignored; quantities above stock are capped
// @Tags Cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product_id path string true "Product ID"
// @Param request body models.UpdateCartItemRequest true "Quantity"
// @Success 200 {object} models.Response{data=models.CartView}
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items/{product_id} [patch]
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := ctrl.carts.UpdateItem(c.Request.Context(), c.GetString("user_id"), c.Param("product_id"), req.Quantity)
	if err != nil {
		respondError(c, "Failed to update cart", err)
		return
	}
	respond(c, http.StatusOK, "Cart updated", view)
}

// RemoveCartItem godoc
// @Summary Remove from cart
// @Tags Cart
// @Produce json
// @Security BearerAuth
// @Param product_id path string true "Product ID"
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart/items/{product_id} [delete]
func (ctrl *CartController) RemoveCartItem(c *gin.Context) {
	view, err := ctrl.carts.RemoveItem(c.Request.Context(), c.GetString("user_id"), c.Param("product_id"))
	if err != nil {
		respondError(c, "Failed to remove item", err)
		return
	}
	respond(c, http.StatusOK, "Item removed from cart", view)
}
