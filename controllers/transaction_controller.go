package controllers

import (
	"net/http"

	"farmconnect/services"

	"github.com/gin-gonic/gin"
)

type TransactionController struct {
	carts *services.CartService
}

func NewTransactionController(carts *services.CartService) *TransactionController {
	return &TransactionController{carts: carts}
}

// Checkout godoc
// @Summary Checkout
// @Description Place one pending order per seller in the cart and empty the cart. The cart is kept when placement fails.
// @Tags Cart
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Response{data=[]models.Order}
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/checkout [post]
func (ctrl *TransactionController) Checkout(c *gin.Context) {
	orders, err := ctrl.carts.Checkout(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, "Checkout failed", err)
		return
	}
	respond(c, http.StatusCreated, "Order placed successfully", orders)
}
