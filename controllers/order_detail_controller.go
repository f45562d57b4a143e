package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetOrderDetail godoc
// @Summary Order detail
// @Description Visible to the order's buyer and seller
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id} [get]
func (ctrl *OrderController) GetOrderDetail(c *gin.Context) {
	order, err := ctrl.orders.Get(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondError(c, "Order not found", err)
		return
	}
	respond(c, http.StatusOK, "Order retrieved successfully", order)
}
