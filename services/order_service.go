package services

import (
	"context"

	"farmconnect/cart"
	"farmconnect/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// recentOrderLimit caps SellerStats.RecentOrders.
const recentOrderLimit = 5

type OrderStore interface {
	CreateOrders(ctx context.Context, buyerID string, drafts []models.Order) ([]models.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID string, status models.OrderStatus) ([]models.Order, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id, sellerID string, next models.OrderStatus) (*models.Order, error)
}

type AccountFinder interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

type OrderService struct {
	orders   OrderStore
	accounts AccountFinder
	cache    ProductCache
	mailer   Mailer
	logger   zerolog.Logger
}

// NewOrderService wires order placement. mailer may be nil to skip seller
// notifications.
func NewOrderService(orders OrderStore, accounts AccountFinder, cache ProductCache, mailer Mailer, logger zerolog.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		accounts: accounts,
		cache:    cache,
		mailer:   mailer,
		logger:   logger.With().Str("service", "order").Logger(),
	}
}

// ForBuyer returns the placer a buyer's cart checks out through.
func (s *OrderService) ForBuyer(buyerID string) cart.OrderPlacer {
	return cart.PlacerFunc(func(ctx context.Context, groups []cart.SellerGroup) ([]models.Order, error) {
		return s.Place(ctx, buyerID, groups)
	})
}

// Place stores one pending order per seller group.
func (s *OrderService) Place(ctx context.Context, buyerID string, groups []cart.SellerGroup) ([]models.Order, error) {
	drafts := make([]models.Order, 0, len(groups))
	for _, g := range groups {
		d := models.Order{SellerID: g.SellerID}
		for _, e := range g.Entries {
			d.Items = append(d.Items, models.OrderItem{ProductID: e.Product.ID, Quantity: e.Quantity})
		}
		drafts = append(drafts, d)
	}

	orders, err := s.orders.CreateOrders(ctx, buyerID, drafts)
	if err != nil {
		return nil, err
	}

	s.invalidateProducts(ctx)
	for _, o := range orders {
		s.notifySeller(ctx, o)
	}
	s.logger.Info().Str("buyer_id", buyerID).Int("orders", len(orders)).Msg("Orders placed")
	return orders, nil
}

func (s *OrderService) notifySeller(ctx context.Context, o models.Order) {
	if s.mailer == nil {
		return
	}
	seller, err := s.accounts.FindByID(ctx, o.SellerID)
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", o.ID).Msg("lookup seller for notification failed")
		return
	}
	if err := s.mailer.SendOrderNotification(seller.Email, seller.Metadata.Name, o); err != nil {
		s.logger.Warn().Err(err).Str("order_id", o.ID).Msg("order notification failed")
	}
}

func (s *OrderService) ListForBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	return s.orders.ListByBuyer(ctx, buyerID)
}

// Get returns an order to its buyer or its seller.
func (s *OrderService) Get(ctx context.Context, userID, id string) (*models.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != userID && o.SellerID != userID {
		return nil, models.NotFoundf("order %s not found", id)
	}
	return o, nil
}

// ListForSeller returns the seller's orders; an empty status means all.
func (s *OrderService) ListForSeller(ctx context.Context, sellerID string, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, models.Validationf("unknown order status %q", status)
	}
	return s.orders.ListBySeller(ctx, sellerID, status)
}

// SellerStats summarises the seller's listings and the orders placed with
// them.
func (s *OrderService) SellerStats(ctx context.Context, sellerID string, listings []models.Product) (*models.SellerStats, error) {
	orders, err := s.orders.ListBySeller(ctx, sellerID, "")
	if err != nil {
		return nil, err
	}
	return summarizeSeller(listings, orders), nil
}

// summarizeSeller expects orders newest first.
func summarizeSeller(listings []models.Product, orders []models.Order) *models.SellerStats {
	stats := &models.SellerStats{
		TotalProducts: len(listings),
		TotalOrders:   len(orders),
		Revenue:       decimal.Zero,
	}
	buyers := map[string]struct{}{}
	for _, o := range orders {
		switch o.Status {
		case models.OrderPending:
			stats.PendingOrders++
		case models.OrderCompleted:
			stats.Revenue = stats.Revenue.Add(o.Total)
		}
		if o.Status != models.OrderCancelled {
			buyers[o.BuyerID] = struct{}{}
		}
	}
	stats.Customers = len(buyers)
	stats.RecentOrders = orders[:min(len(orders), recentOrderLimit)]
	return stats
}

func (s *OrderService) UpdateStatus(ctx context.Context, sellerID, id string, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, models.Validationf("unknown order status %q", next)
	}
	o, err := s.orders.UpdateStatus(ctx, id, sellerID, next)
	if err != nil {
		return nil, err
	}
	if next == models.OrderCancelled {
		s.invalidateProducts(ctx)
	}
	return o, nil
}

func (s *OrderService) invalidateProducts(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("product cache invalidation failed")
	}
}
