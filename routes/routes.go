package routes

import (
	"farmconnect/controllers"
	"farmconnect/libs"
	"farmconnect/middleware"
	"farmconnect/models"
	"farmconnect/services"
	"farmconnect/utils"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Auth     *services.AuthService
	Products *services.ProductService
	Carts    *services.CartService
	Orders   *services.OrderService

	Images        libs.ImageStore
	MaxUploadSize int64
	// UploadDir is served under /uploads when set.
	UploadDir string
}

func SetupRoutes(router *gin.Engine, deps *Dependencies) {
	controllers.RegisterValidators()

	authCtrl := controllers.NewAuthController(deps.Auth)
	profileCtrl := controllers.NewProfileController(deps.Auth)
	productCtrl := controllers.NewProductController(deps.Products, deps.Images, deps.MaxUploadSize)
	categoryCtrl := &controllers.CategoryController{}
	cartCtrl := controllers.NewCartController(deps.Carts)
	transactionCtrl := controllers.NewTransactionController(deps.Carts)
	historyCtrl := controllers.NewHistoryController(deps.Orders)
	orderCtrl := controllers.NewOrderController(deps.Orders)
	dashboardCtrl := controllers.NewDashboardController(deps.Products, deps.Orders)

	session := middleware.AuthMiddleware(deps.Auth)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	router.POST("/auth/signup", authCtrl.Signup)
	router.POST("/auth/login", authCtrl.Login)
	router.GET("/auth/confirm", authCtrl.ConfirmEmail)
	router.GET("/categories", categoryCtrl.GetCategories)
	router.GET("/products", productCtrl.GetAllProducts)
	router.GET("/products/:id", productCtrl.GetProductDetail)

	// the profile insert right after sign-up may carry a signup token
	router.POST("/profiles", middleware.AuthMiddleware(deps.Auth, utils.ScopeSession, utils.ScopeSignup), profileCtrl.CreateProfile)

	auth := router.Group("/")
	auth.Use(session)
	{
		auth.POST("/auth/logout", authCtrl.Logout)
		auth.GET("/auth/session", authCtrl.Session)
		auth.POST("/auth/change-password", authCtrl.ChangePassword)
		auth.DELETE("/auth/account", authCtrl.DeleteAccount)

		auth.GET("/profiles/:id", profileCtrl.GetProfile)
		auth.PATCH("/profiles/:id", profileCtrl.UpdateProfile)

		auth.GET("/orders/:id", orderCtrl.GetOrderDetail)
	}

	buyer := router.Group("/")
	buyer.Use(session, middleware.RequireRole(models.RoleBuyer))
	{
		buyer.GET("/cart", cartCtrl.GetCart)
		buyer.POST("/cart/items", cartCtrl.AddToCart)
		buyer.PATCH("/cart/items/:product_id", cartCtrl.UpdateCartItem)
		buyer.DELETE("/cart/items/:product_id", cartCtrl.RemoveCartItem)
		buyer.POST("/cart/checkout", transactionCtrl.Checkout)
		buyer.GET("/orders", historyCtrl.GetHistory)
	}

	seller := router.Group("/seller")
	seller.Use(session, middleware.RequireRole(models.RoleSeller))
	{
		seller.GET("/products", productCtrl.GetMyProducts)
		seller.POST("/products", productCtrl.CreateProduct)
		seller.PATCH("/products/:id", productCtrl.UpdateProduct)
		seller.DELETE("/products/:id", productCtrl.DeleteProduct)
		seller.POST("/uploads", productCtrl.UploadImage)
		seller.GET("/price-recommendation", productCtrl.GetPriceRecommendation)
		seller.GET("/stats", dashboardCtrl.GetStats)

		seller.GET("/orders", orderCtrl.GetSellerOrders)
		seller.PATCH("/orders/:id/status", orderCtrl.UpdateOrderStatus)
	}

	if deps.UploadDir != "" {
		router.Static("/uploads", deps.UploadDir)
	}
}
