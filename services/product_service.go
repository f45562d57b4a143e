package services

import (
	"context"
	"strings"

	"farmconnect/catalog"
	"farmconnect/models"
	"farmconnect/repositories"

	"github.com/rs/zerolog"
)

type ProductStore interface {
	List(ctx context.Context) ([]models.Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
}

type ProductCache interface {
	Get(ctx context.Context, key string) ([]models.Product, bool, error)
	Set(ctx context.Context, key string, products []models.Product) error
	Invalidate(ctx context.Context) error
}

type ProductService struct {
	products ProductStore
	cache    ProductCache
	logger   zerolog.Logger
}

func NewProductService(products ProductStore, cache ProductCache, logger zerolog.Logger) *ProductService {
	return &ProductService{
		products: products,
		cache:    cache,
		logger:   logger.With().Str("service", "product").Logger(),
	}
}

// all returns every product, newest first, from the cache when it can.
func (s *ProductService) all(ctx context.Context) ([]models.Product, error) {
	if cached, hit, err := s.cache.Get(ctx, repositories.ProductListAllKey); err != nil {
		s.logger.Warn().Err(err).Msg("product cache read failed")
	} else if hit {
		return cached, nil
	}

	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, repositories.ProductListAllKey, products); err != nil {
		s.logger.Warn().Err(err).Msg("product cache write failed")
	}
	return products, nil
}

// List returns the products matching c.
func (s *ProductService) List(ctx context.Context, c catalog.Criteria) ([]models.Product, error) {
	products, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FilterProducts(products, c), nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *ProductService) ListBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	return s.products.ListBySeller(ctx, sellerID)
}

func (s *ProductService) Create(ctx context.Context, sellerID string, req models.CreateProductRequest) (*models.Product, error) {
	p := &models.Product{
		SellerID:    sellerID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Category:    req.Category,
		Location:    strings.TrimSpace(req.Location),
		ImageURL:    req.ImageURL,
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *ProductService) owned(ctx context.Context, sellerID, id string) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SellerID != sellerID {
		return nil, models.Permissionf("product %s belongs to another seller", id)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, sellerID, id string, req models.UpdateProductRequest) (*models.Product, error) {
	p, err := s.owned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Location != nil {
		p.Location = strings.TrimSpace(*req.Location)
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, sellerID, id string) error {
	if _, err := s.owned(ctx, sellerID, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProductService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("product cache invalidation failed")
	}
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return models.Validationf("name is required")
	case !p.Price.IsPositive():
		return models.Validationf("price must be greater than zero")
	case p.Quantity.IsNegative():
		return models.Validationf("quantity cannot be negative")
	case !p.Unit.Valid():
		return models.Validationf("unknown unit %q", p.Unit)
	case !p.Category.Valid():
		return models.Validationf("unknown category %q", p.Category)
	case p.Location == "":
		return models.Validationf("location is required")
	}
	return nil
}
