// Package apitest runs the full HTTP API over in-memory stores and miniredis.
package apitest

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"farmconnect/libs"
	"farmconnect/models"
	"farmconnect/repositories"
	"farmconnect/routes"
	"farmconnect/services"
	"farmconnect/testutil"
	"farmconnect/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Options struct {
	// RequireConfirmation turns on the confirmation mail flow. Mail goes to
	// Server.Mail.
	RequireConfirmation bool
	Products            []models.Product
}

type Server struct {
	*httptest.Server

	Router   *gin.Engine
	Accounts *testutil.Accounts
	Profiles *testutil.Profiles
	Products *testutil.Products
	Orders   *testutil.Orders
	Redis    *miniredis.Miniredis
	Mail     *Outbox
}

// Sent is one mail captured by Outbox.
type Sent struct {
	To   string
	Link string
}

// Outbox records mails instead of sending them.
type Outbox struct {
	mu   sync.Mutex
	sent []Sent
}

func (o *Outbox) SendConfirmation(to, _ string, link string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, Sent{To: to, Link: link})
	return nil
}

func (o *Outbox) SendOrderNotification(to, _ string, _ models.Order) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, Sent{To: to})
	return nil
}

func (o *Outbox) Sent() []Sent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Sent(nil), o.sent...)
}

func NewServer(t *testing.T, opts Options) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	s := &Server{
		Accounts: testutil.NewAccounts(),
		Profiles: testutil.NewProfiles(),
		Products: testutil.NewProducts(opts.Products...),
		Redis:    mr,
		Mail:     &Outbox{},
	}
	s.Orders = testutil.NewOrders(s.Products)

	var mailer services.Mailer
	if opts.RequireConfirmation {
		mailer = s.Mail
	}

	s.Server = httptest.NewUnstartedServer(nil)
	publicURL := "http://" + s.Server.Listener.Addr().String()

	logger := zerolog.Nop()
	cache := repositories.NewProductCache(rdb, time.Minute)
	uploads := t.TempDir()

	deps := &routes.Dependencies{
		Auth: services.NewAuthService(s.Accounts, s.Profiles, repositories.NewTokenRepository(rdb), utils.NewTokenManager("test-secret"), mailer, services.AuthConfig{
			SessionTTL:          time.Hour,
			SignupTokenTTL:      10 * time.Minute,
			RequireConfirmation: opts.RequireConfirmation,
			PublicURL:           publicURL,
		}, logger),
		Products:      services.NewProductService(s.Products, cache, logger),
		Images:        libs.DiskStore{Storage: &utils.LocalStorage{Root: uploads, BaseURL: publicURL + "/uploads"}},
		MaxUploadSize: 1 << 20,
		UploadDir:     uploads,
	}
	deps.Orders = services.NewOrderService(s.Orders, s.Accounts, cache, mailer, logger)
	deps.Carts = services.NewCartService(repositories.NewCartRepository(rdb, time.Hour), s.Products, deps.Orders, logger)

	s.Router = gin.New()
	routes.SetupRoutes(s.Router, deps)
	s.Server.Config.Handler = s.Router
	s.Server.Start()
	t.Cleanup(s.Server.Close)
	return s
}
