package controllers

import (
	"net/http"

	"farmconnect/services"

	"github.com/gin-gonic/gin"
)

type HistoryController struct {
	orders *services.OrderService
}

func NewHistoryController(orders *services.OrderService) *HistoryController {
	return &HistoryController{orders: orders}
}

// GetHistory godoc
// @Summary Order history
// @Description The buyer's orders, newest first
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.Response{data=[]models.Order}
// @Router /orders [get]
func (ctrl *HistoryController) GetHistory(c *gin.Context) {
	orders, err := ctrl.orders.ListForBuyer(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, "Failed to fetch orders", err)
		return
	}

	if page, limit, ok := paginationParams(c, 10); ok {
		c.JSON(http.StatusOK, paginate("Orders retrieved successfully", orders, page, limit))
		return
	}
	respond(c, http.StatusOK, "Orders retrieved successfully", orders)
}
