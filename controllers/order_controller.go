package controllers

import (
	"net/http"

	"farmconnect/models"
	"farmconnect/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// GetSellerOrders godoc
// @Summary Seller orders
// @Description Orders for the seller's products, newest first
// @Tags Seller - Orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, completed or cancelled"
// @Success 200 {object} models.Response{data=[]models.Order}
// @Failure 400 {object} models.ErrorResponse
// @Router /seller/orders [get]
func (ctrl *OrderController) GetSellerOrders(c *gin.Context) {
	status := models.OrderStatus(c.Query("status"))
	orders, err := ctrl.orders.ListForSeller(c.Request.Context(), c.GetString("user_id"), status)
	if err != nil {
		respondError(c, "Failed to fetch orders", err)
		return
	}
	respond(c, http.StatusOK, "Orders retrieved successfully", orders)
}

// UpdateOrderStatus godoc
// @Summary Update order status
// @Description Pending orders can be completed or cancelled; cancelling restores stock
// @Tags Seller - Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body models.UpdateOrderStatusRequest true "Status"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /seller/orders/{id}/status [patch]
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := ctrl.orders.UpdateStatus(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, "Failed to update order status", err)
		return
	}
	respond(c, http.StatusOK, "Order status updated successfully", order)
}
