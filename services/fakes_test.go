package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"farmconnect/models"

	"gopkg.in/gomail.v2"
)

type memTokens struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemTokens() *memTokens {
	return &memTokens{revoked: map[string]time.Time{}}
}

func (m *memTokens) Revoke(_ context.Context, jti string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = until
	return nil
}

func (m *memTokens) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

type sentMail struct {
	kind string
	to   string
	link string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendConfirmation(to, _ string, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{kind: "confirm", to: to, link: link})
	return nil
}

func (f *fakeMailer) SendOrderNotification(to, _ string, _ models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{kind: "order", to: to})
	return nil
}

type memCache struct {
	mu          sync.Mutex
	entries     map[string][]models.Product
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]models.Product{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]models.Product, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[key]
	return p, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, products []models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = products
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]models.Product{}
	c.invalidated++
	return nil
}

type memCarts struct {
	mu    sync.Mutex
	carts map[string]models.StoredCart
}

func newMemCarts() *memCarts {
	return &memCarts{carts: map[string]models.StoredCart{}}
}

func (m *memCarts) Get(_ context.Context, buyerID string) (*models.StoredCart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[buyerID]
	if !ok {
		return &models.StoredCart{BuyerID: buyerID}, nil
	}
	c.Entries = append([]models.CartEntry(nil), c.Entries...)
	return &c, nil
}

func (m *memCarts) Save(_ context.Context, c *models.StoredCart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(c.Entries) == 0 {
		delete(m.carts, c.BuyerID)
		return nil
	}
	m.carts[c.BuyerID] = *c
	return nil
}

func (m *memCarts) Delete(_ context.Context, buyerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, buyerID)
	return nil
}

type recordingSender struct {
	messages []*gomail.Message
	err      error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, m...)
	return nil
}

var errStoreDown = errors.New("store down")
