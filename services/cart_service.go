package services

import (
	"context"

	"farmconnect/cart"
	"farmconnect/models"

	"github.com/rs/zerolog"
)

type CartStore interface {
	Get(ctx context.Context, buyerID string) (*models.StoredCart, error)
	Save(ctx context.Context, c *models.StoredCart) error
	Delete(ctx context.Context, buyerID string) error
}

type ProductFinder interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

type Checkout interface {
	ForBuyer(buyerID string) cart.OrderPlacer
}

// CartService loads a buyer's stored cart into a cart.Cart for every
// operation and writes it back after a change.
type CartService struct {
	carts    CartStore
	products ProductFinder
	checkout Checkout
	logger   zerolog.Logger
}

func NewCartService(carts CartStore, products ProductFinder, checkout Checkout, logger zerolog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		checkout: checkout,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

func (s *CartService) load(ctx context.Context, buyerID string) (*cart.Cart, error) {
	stored, err := s.carts.Get(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return cart.New(stored.Entries...), nil
}

func (s *CartService) save(ctx context.Context, buyerID string, c *cart.Cart) error {
	return s.carts.Save(ctx, &models.StoredCart{BuyerID: buyerID, Entries: c.Entries()})
}

func (s *CartService) View(ctx context.Context, buyerID string) (*models.CartView, error) {
	c, err := s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return NewCartView(c.Entries()), nil
}

// AddItem adds a product at its current price and stock. Quantity zero
// means one.
func (s *CartService) AddItem(ctx context.Context, buyerID string, req models.AddToCartRequest) (*models.CartView, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.SellerID == buyerID {
		return nil, models.Validationf("cannot add your own product to the cart")
	}

	c, err := s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if _, err := c.Add(*product, quantity); err != nil {
		return nil, err
	}
	if err := s.save(ctx, buyerID, c); err != nil {
		return nil, err
	}
	return NewCartView(c.Entries()), nil
}

// UpdateItem sets an entry's quantity, capped at the product's current
// stock. Quantities below one leave the entry as it is.
func (s *CartService) UpdateItem(ctx context.Context, buyerID, productID string, quantity int) (*models.CartView, error) {
	c, err := s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if quantity >= 1 {
		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		c.Refresh(*product)
	}
	if _, err := c.UpdateQuantity(productID, quantity); err != nil {
		return nil, err
	}
	if err := s.save(ctx, buyerID, c); err != nil {
		return nil, err
	}
	return NewCartView(c.Entries()), nil
}

func (s *CartService) RemoveItem(ctx context.Context, buyerID, productID string) (*models.CartView, error) {
	c, err := s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	c.Remove(productID)
	if err := s.save(ctx, buyerID, c); err != nil {
		return nil, err
	}
	return NewCartView(c.Entries()), nil
}

// Checkout places one order per seller and empties the cart. A failed
// placement leaves the stored cart as it was.
func (s *CartService) Checkout(ctx context.Context, buyerID string) ([]models.Order, error) {
	c, err := s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	orders, err := c.PlaceOrder(ctx, s.checkout.ForBuyer(buyerID))
	if err != nil {
		return nil, err
	}

	if err := s.carts.Delete(ctx, buyerID); err != nil {
		s.logger.Error().Err(err).Str("buyer_id", buyerID).Msg("clear cart after checkout failed")
	}
	return orders, nil
}

func NewCartView(entries []models.CartEntry) *models.CartView {
	groups := cart.GroupBySeller(entries)
	view := &models.CartView{
		Entries: entries,
		Groups:  make([]models.SellerGroupView, 0, len(groups)),
		Total:   cart.CalculateTotal(entries),
	}
	for _, g := range groups {
		view.Groups = append(view.Groups, models.SellerGroupView{
			SellerID: g.SellerID,
			Entries:  g.Entries,
			Subtotal: cart.CalculateTotal(g.Entries),
		})
	}
	return view
}
