package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartEntry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	SellerID string  `json:"seller_id"`
}

func (e CartEntry) Subtotal() decimal.Decimal {
	return e.Product.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

type StoredCart struct {
	BuyerID   string      `json:"buyer_id"`
	Entries   []CartEntry `json:"entries"`
	UpdatedAt time.Time   `json:"updated_at"`
}
