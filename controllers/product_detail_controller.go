package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetProductDetail godoc
// @Summary Get product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Response{data=models.Product}
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (ctrl *ProductController) GetProductDetail(c *gin.Context) {
	product, err := ctrl.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Product not found", err)
		return
	}
	respond(c, http.StatusOK, "Product retrieved successfully", product)
}
