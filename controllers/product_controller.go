package controllers

import (
	"net/http"

	"farmconnect/catalog"
	"farmconnect/libs"
	"farmconnect/models"
	"farmconnect/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductController struct {
	products      *services.ProductService
	images        libs.ImageStore
	maxUploadSize int64
}

func NewProductController(products *services.ProductService, images libs.ImageStore, maxUploadSize int64) *ProductController {
	return &ProductController{products: products, images: images, maxUploadSize: maxUploadSize}
}

// GetAllProducts godoc
// @Summary List products
// @Description Browse listings. Search matches name and description, location is a substring match, category is exact. Without page/limit the full result is returned.
// @Tags Products
// @Produce json
// @Param search query string false "Search in name and description"
// @Param location query string false "Location contains"
// @Param category query string false "Category"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Param sort query string false "newest, price_asc, price_desc, name_asc or name_desc"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.Response{data=[]models.Product}
// @Failure 400 {object} models.ErrorResponse
// @Router /products [get]
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	criteria, err := catalog.ParseCriteria(c.Request.URL.Query())
	if err != nil {
		respondError(c, "Invalid filter", err)
		return
	}

	products, err := ctrl.products.List(c.Request.Context(), criteria)
	if err != nil {
		respondError(c, "Failed to fetch products", err)
		return
	}

	if page, limit, ok := paginationParams(c, 12); ok {
		c.JSON(http.StatusOK, paginate("Products retrieved successfully", products, page, limit))
		return
	}
	respond(c, http.StatusOK, "Products retrieved successfully", products)
}

// GetPriceRecommendation godoc
// @Summary Price recommendation
// @Description Suggests a price from other sellers' listings in the same category and unit
// @Tags Seller - Products
// @Produce json
// @Security BearerAuth
// @Param category query string true "Category"
// @Param unit query string true "Unit"
// @Param price query number false "Price to compare"
// @Success 200 {object} models.Response{data=models.PriceRecommendation}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /seller/price-recommendation [get]
func (ctrl *ProductController) GetPriceRecommendation(c *gin.Context) {
	price := decimal.Zero
	if raw := c.Query("price"); raw != "" {
		var err error
		if price, err = decimal.NewFromString(raw); err != nil {
			respondError(c, "Invalid price", models.Validationf("price %q is not a number", raw))
			return
		}
	}

	rec, err := ctrl.products.RecommendPrice(c.Request.Context(), c.GetString("user_id"),
		models.Category(c.Query("category")), models.Unit(c.Query("unit")), price)
	if err != nil {
		respondError(c, "Failed to recommend a price", err)
		return
	}
	respond(c, http.StatusOK, "Price recommendation generated", rec)
}

// GetMyProducts godoc
// @Summary List own products
// @Tags Seller - Products
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response{data=[]models.Product}
// @Router /seller/products [get]
func (ctrl *ProductController) GetMyProducts(c *gin.Context) {
	products, err := ctrl.products.ListBySeller(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, "Failed to fetch products", err)
		return
	}
	respond(c, http.StatusOK, "Products retrieved successfully", products)
}

// CreateProduct godoc
// @Summary Create product
// @Tags Seller - Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateProductRequest true "Product"
// @Success 201 {object} models.Response{data=models.Product}
// @Failure 400 {object} models.ErrorResponse
// @Router /seller/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := ctrl.products.Create(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		respondError(c, "Failed to create product", err)
		return
	}
	respond(c, http.StatusCreated, "Product created successfully", product)
}

// UpdateProduct godoc
// @Summary Update product
// @Tags Seller - Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body models.UpdateProductRequest true "Changed fields"
// @Success 200 {object} models.Response{data=models.Product}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /seller/products/{id} [patch]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := ctrl.products.Update(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req)
	if err != nil {
		respondError(c, "Failed to update product", err)
		return
	}
	respond(c, http.StatusOK, "Product updated successfully", product)
}

// DeleteProduct godoc
// @Summary Delete product
// @Tags Seller - Products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} models.Response
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /seller/products/{id} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	if err := ctrl.products.Delete(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		respondError(c, "Failed to delete product", err)
		return
	}
	respond(c, http.StatusOK, "Product deleted successfully", nil)
}

type uploadResult struct {
	URL string `json:"url"`
}

// UploadImage godoc
// @Summary Upload product image
// @Description Store an image and return its public URL for use as image_url
// @Tags Seller - Products
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image (jpg, jpeg, png, gif, webp)"
// @Success 201 {object} models.Response{data=uploadResult}
// @Failure 400 {object} models.ErrorResponse
// @Router /seller/uploads [post]
func (ctrl *ProductController) UploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		badRequest(c, err)
		return
	}

	url, err := libs.SaveUploadedImage(c.Request.Context(), ctrl.images, header, ctrl.maxUploadSize, "products")
	if err != nil {
		respondError(c, "Failed to upload image", err)
		return
	}
	respond(c, http.StatusCreated, "Image uploaded successfully", uploadResult{URL: url})
}
