package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"farmconnect/cart"
	"farmconnect/catalog"
	"farmconnect/models"

	"github.com/shopspring/decimal"
)

func (c *Client) ListProducts(ctx context.Context, criteria catalog.Criteria) ([]models.Product, error) {
	path := "/products"
	if q := criteria.Values(); len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []models.Product
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), "", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) MyProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, http.MethodGet, "/seller/products", c.accessToken(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	var p models.Product
	if err := c.do(ctx, http.MethodPost, "/seller/products", c.accessToken(), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	var p models.Product
	if err := c.do(ctx, http.MethodPatch, "/seller/products/"+url.PathEscape(id), c.accessToken(), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/seller/products/"+url.PathEscape(id), c.accessToken(), nil, nil)
}

// UploadImage sends an image for a listing and returns its public URL.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/seller/uploads", &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		URL string `json:"url"`
	}
	if err := c.send(req, c.accessToken(), &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) Cart(ctx context.Context) (*models.CartView, error) {
	var v models.CartView
	if err := c.do(ctx, http.MethodGet, "/cart", c.accessToken(), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (*models.CartView, error) {
	var v models.CartView
	req := models.AddToCartRequest{ProductID: productID, Quantity: quantity}
	if err := c.do(ctx, http.MethodPost, "/cart/items", c.accessToken(), req, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) (*models.CartView, error) {
	var v models.CartView
	req := models.UpdateCartItemRequest{Quantity: quantity}
	if err := c.do(ctx, http.MethodPatch, "/cart/items/"+url.PathEscape(productID), c.accessToken(), req, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, productID string) (*models.CartView, error) {
	var v models.CartView
	if err := c.do(ctx, http.MethodDelete, "/cart/items/"+url.PathEscape(productID), c.accessToken(), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) Checkout(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, http.MethodPost, "/cart/checkout", c.accessToken(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PlaceOrder makes the server cart hold exactly the entries of groups and
// checks it out. It lets a local cart.Cart be placed through the API.
func (c *Client) PlaceOrder(ctx context.Context, groups []cart.SellerGroup) ([]models.Order, error) {
	current, err := c.Cart(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range current.Entries {
		if _, err := c.RemoveCartItem(ctx, e.Product.ID); err != nil {
			return nil, err
		}
	}

	for _, g := range groups {
		for _, e := range g.Entries {
			if _, err := c.AddToCart(ctx, e.Product.ID, e.Quantity); err != nil {
				return nil, err
			}
		}
	}
	return c.Checkout(ctx)
}

func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, http.MethodGet, "/orders", c.accessToken(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), c.accessToken(), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// SellerOrders lists orders for the seller's products; an empty status means
// all of them.
func (c *Client) SellerOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	path := "/seller/orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var out []models.Order
	if err := c.do(ctx, http.MethodGet, path, c.accessToken(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	var o models.Order
	req := models.UpdateOrderStatusRequest{Status: status}
	if err := c.do(ctx, http.MethodPatch, "/seller/orders/"+url.PathEscape(id)+"/status", c.accessToken(), req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) SellerStats(ctx context.Context) (*models.SellerStats, error) {
	var stats models.SellerStats
	if err := c.do(ctx, http.MethodGet, "/seller/stats", c.accessToken(), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecommendPrice asks for a price for a listing in category sold per unit.
// A zero price leaves out the comparison with the seller's own price.
func (c *Client) RecommendPrice(ctx context.Context, category models.Category, unit models.Unit, price decimal.Decimal) (*models.PriceRecommendation, error) {
	q := url.Values{}
	q.Set("category", string(category))
	q.Set("unit", string(unit))
	if price.IsPositive() {
		q.Set("price", price.String())
	}
	var rec models.PriceRecommendation
	if err := c.do(ctx, http.MethodGet, "/seller/price-recommendation?"+q.Encode(), c.accessToken(), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
