// Package testutil holds in-memory stand-ins for the Postgres repositories.
// They follow the same error kinds and stock rules so services can be
// exercised without a database.
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"farmconnect/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Accounts struct {
	mu   sync.Mutex
	byID map[string]*models.Account
}

func NewAccounts() *Accounts {
	return &Accounts{byID: map[string]*models.Account{}}
}

func (m *Accounts) Create(_ context.Context, acc *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if strings.EqualFold(a.Email, acc.Email) {
			return models.ErrDuplicate
		}
	}
	acc.ID = uuid.NewString()
	acc.CreatedAt = time.Now()
	acc.UpdatedAt = acc.CreatedAt
	cp := *acc
	m.byID[acc.ID] = &cp
	return nil
}

func (m *Accounts) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.NotFoundf("account not found")
}

func (m *Accounts) FindByID(_ context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, models.NotFoundf("account not found")
	}
	cp := *a
	return &cp, nil
}

func (m *Accounts) Confirm(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return models.NotFoundf("account %s not found", id)
	}
	if a.EmailConfirmedAt == nil {
		now := time.Now()
		a.EmailConfirmedAt = &now
	}
	return nil
}

func (m *Accounts) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return models.NotFoundf("account %s not found", id)
	}
	a.Password = hash
	return nil
}

func (m *Accounts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return models.NotFoundf("account %s not found", id)
	}
	delete(m.byID, id)
	return nil
}

type Profiles struct {
	mu   sync.Mutex
	byID map[string]models.Profile
}

func NewProfiles() *Profiles {
	return &Profiles{byID: map[string]models.Profile{}}
}

func (m *Profiles) Create(_ context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; ok {
		return models.ErrDuplicate
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.byID[p.ID] = *p
	return nil
}

func (m *Profiles) FindByID(_ context.Context, id string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, models.NotFoundf("profile not found")
	}
	return &p, nil
}

func (m *Profiles) Update(_ context.Context, id string, req models.UpdateProfileRequest) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, models.NotFoundf("profile not found")
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Location != nil {
		p.Location = *req.Location
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	p.UpdatedAt = time.Now()
	m.byID[id] = p
	return &p, nil
}

// Products keeps products in insertion order.
type Products struct {
	mu        sync.Mutex
	items     map[string]models.Product
	order     []string
	listCalls int
}

func NewProducts(products ...models.Product) *Products {
	m := &Products{items: map[string]models.Product{}}
	for _, p := range products {
		m.items[p.ID] = p
		m.order = append(m.order, p.ID)
	}
	return m
}

// ListCalls counts List invocations.
func (m *Products) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

func (m *Products) List(context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	return m.snapshot(""), nil
}

func (m *Products) snapshot(sellerID string) []models.Product {
	out := []models.Product{}
	for _, id := range m.order {
		p, ok := m.items[id]
		if ok && (sellerID == "" || p.SellerID == sellerID) {
			out = append(out, p)
		}
	}
	return out
}

func (m *Products) ListBySeller(_ context.Context, sellerID string) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(sellerID), nil
}

func (m *Products) FindByID(_ context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, models.NotFoundf("product %s not found", id)
	}
	return &p, nil
}

func (m *Products) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.items[p.ID] = *p
	m.order = append(m.order, p.ID)
	return nil
}

func (m *Products) Update(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return models.NotFoundf("product %s not found", p.ID)
	}
	p.UpdatedAt = time.Now()
	m.items[p.ID] = *p
	return nil
}

func (m *Products) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return models.NotFoundf("product %s not found", id)
	}
	delete(m.items, id)
	return nil
}

// Orders stores orders and moves stock in the Products it was built with.
type Orders struct {
	mu       sync.Mutex
	products *Products
	orders   []models.Order

	// Fail, when set, is returned by CreateOrders.
	Fail error
}

func NewOrders(products *Products) *Orders {
	return &Orders{products: products}
}

func (m *Orders) CreateOrders(_ context.Context, buyerID string, drafts []models.Order) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}

	m.products.mu.Lock()
	defer m.products.mu.Unlock()

	stock := map[string]decimal.Decimal{}
	for id, p := range m.products.items {
		stock[id] = p.Quantity
	}

	created := make([]models.Order, 0, len(drafts))
	for _, d := range drafts {
		if len(d.Items) == 0 {
			return nil, models.Validationf("order for seller %s has no items", d.SellerID)
		}
		o := models.Order{
			ID:        uuid.NewString(),
			BuyerID:   buyerID,
			SellerID:  d.SellerID,
			Status:    models.OrderPending,
			CreatedAt: time.Now(),
		}
		for _, it := range d.Items {
			p, ok := m.products.items[it.ProductID]
			if !ok {
				return nil, models.NotFoundf("product %s not found", it.ProductID)
			}
			if p.SellerID != d.SellerID {
				return nil, models.Validationf("product %s is not sold by %s", p.ID, d.SellerID)
			}
			q := decimal.NewFromInt(int64(it.Quantity))
			if stock[p.ID].LessThan(q) {
				return nil, models.Validationf("only %s %s of %s left", stock[p.ID], p.Unit, p.Name)
			}
			stock[p.ID] = stock[p.ID].Sub(q)
			o.Items = append(o.Items, models.OrderItem{
				ID:          uuid.NewString(),
				OrderID:     o.ID,
				ProductID:   p.ID,
				ProductName: p.Name,
				Unit:        p.Unit,
				Quantity:    it.Quantity,
				Price:       p.Price,
			})
			o.Total = o.Total.Add(p.Price.Mul(q))
		}
		o.UpdatedAt = o.CreatedAt
		created = append(created, o)
	}

	for id, q := range stock {
		p := m.products.items[id]
		p.Quantity = q
		m.products.items[id] = p
	}
	m.orders = append(m.orders, created...)
	return created, nil
}

func (m *Orders) ListByBuyer(_ context.Context, buyerID string) ([]models.Order, error) {
	return m.filter(func(o models.Order) bool { return o.BuyerID == buyerID }), nil
}

func (m *Orders) ListBySeller(_ context.Context, sellerID string, status models.OrderStatus) ([]models.Order, error) {
	return m.filter(func(o models.Order) bool {
		return o.SellerID == sellerID && (status == "" || o.Status == status)
	}), nil
}

func (m *Orders) filter(keep func(models.Order) bool) []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for i := len(m.orders) - 1; i >= 0; i-- {
		if keep(m.orders[i]) {
			out = append(out, m.orders[i])
		}
	}
	return out
}

func (m *Orders) FindByID(_ context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, models.NotFoundf("order %s not found", id)
}

func (m *Orders) UpdateStatus(_ context.Context, id, sellerID string, next models.OrderStatus) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		o := &m.orders[i]
		if o.ID != id {
			continue
		}
		if o.SellerID != sellerID {
			return nil, models.Permissionf("order %s belongs to another seller", id)
		}
		if !o.Status.CanTransition(next) {
			return nil, models.Validationf("cannot change order from %s to %s", o.Status, next)
		}
		if next == models.OrderCancelled {
			m.products.mu.Lock()
			for _, it := range o.Items {
				if p, ok := m.products.items[it.ProductID]; ok {
					p.Quantity = p.Quantity.Add(decimal.NewFromInt(int64(it.Quantity)))
					m.products.items[it.ProductID] = p
				}
			}
			m.products.mu.Unlock()
		}
		o.Status = next
		o.UpdatedAt = time.Now()
		cp := *o
		return &cp, nil
	}
	return nil, models.NotFoundf("order %s not found", id)
}
