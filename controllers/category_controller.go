package controllers

import (
	"net/http"

	"farmconnect/models"

	"github.com/gin-gonic/gin"
)

type CategoryController struct{}

type catalogOptions struct {
	Categories []models.Category `json:"categories"`
	Units      []models.Unit     `json:"units"`
}

// GetCategories godoc
// @Summary Listing options
// @Description Categories and units accepted for product listings
// @Tags Products
// @Produce json
// @Success 200 {object} models.Response{data=catalogOptions}
// @Router /categories [get]
func (ctrl *CategoryController) GetCategories(c *gin.Context) {
	respond(c, http.StatusOK, "Categories retrieved", catalogOptions{
		Categories: models.Categories,
		Units:      models.Units,
	})
}
