package routes

import (
	"strings"

	"farmconnect/config"
	"farmconnect/libs"
	"farmconnect/middleware"
	"farmconnect/repositories"
	"farmconnect/services"
	"farmconnect/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewDependencies builds the repositories and services for cfg. Images go to
// Cloudinary when it is configured and to UploadDir otherwise; mail is only
// sent when SMTP is configured.
func NewDependencies(cfg *config.Config, db repositories.DB, rdb *redis.Client, logger zerolog.Logger) (*Dependencies, error) {
	accounts := repositories.NewAccountRepository(db)
	profiles := repositories.NewProfileRepository(db)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db)
	carts := repositories.NewCartRepository(rdb, cfg.CartTTL)
	tokens := repositories.NewTokenRepository(rdb)
	cache := repositories.NewProductCache(rdb, cfg.ProductCacheTTL)

	var mailer services.Mailer
	if cfg.SMTPConfigured() {
		mailer = services.NewMailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	} else {
		logger.Warn().Msg("SMTP not configured, accounts are confirmed at sign-up and sellers get no order mail")
	}

	deps := &Dependencies{MaxUploadSize: cfg.MaxUploadSize}
	if cfg.CloudinaryConfigured() {
		store, err := libs.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryURL)
		if err != nil {
			return nil, err
		}
		deps.Images = store
	} else {
		deps.Images = libs.DiskStore{Storage: &utils.LocalStorage{
			Root:    cfg.UploadDir,
			BaseURL: strings.TrimRight(cfg.PublicURL, "/") + "/uploads",
		}}
		deps.UploadDir = cfg.UploadDir
	}

	tm := utils.NewTokenManager(cfg.JWTSecret)
	deps.Auth = services.NewAuthService(accounts, profiles, tokens, tm, mailer, services.AuthConfig{
		SessionTTL:          cfg.JWTExpiry,
		SignupTokenTTL:      cfg.SignupTokenExpiry,
		RequireConfirmation: cfg.RequireEmailConfirmation,
		PublicURL:           cfg.PublicURL,
	}, logger)
	deps.Products = services.NewProductService(products, cache, logger)
	deps.Orders = services.NewOrderService(orders, accounts, cache, mailer, logger)
	deps.Carts = services.NewCartService(carts, products, deps.Orders, logger)

	return deps, nil
}

// NewRouter returns the engine with recovery, request ids, request logging
// and CORS in front of every route.
func NewRouter(cfg *config.Config, deps *Dependencies, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware(cfg.OriginURL))

	SetupRoutes(router, deps)
	return router
}
