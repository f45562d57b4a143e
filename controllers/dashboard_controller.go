package controllers

import (
	"net/http"

	"farmconnect/services"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	products *services.ProductService
	orders   *services.OrderService
}

func NewDashboardController(products *services.ProductService, orders *services.OrderService) *DashboardController {
	return &DashboardController{products: products, orders: orders}
}

// GetStats godoc
// @Summary Seller dashboard
// @Description Listing and order totals, revenue from completed orders, distinct customers and the latest orders
// @Tags Seller - Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response{data=models.SellerStats}
// @Router /seller/stats [get]
func (ctrl *DashboardController) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	sellerID := c.GetString("user_id")

	listings, err := ctrl.products.ListBySeller(ctx, sellerID)
	if err != nil {
		respondError(c, "Failed to fetch dashboard", err)
		return
	}
	stats, err := ctrl.orders.SellerStats(ctx, sellerID, listings)
	if err != nil {
		respondError(c, "Failed to fetch dashboard", err)
		return
	}
	respond(c, http.StatusOK, "Dashboard retrieved successfully", stats)
}
