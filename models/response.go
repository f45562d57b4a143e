package models

import "github.com/shopspring/decimal"

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type MetaData struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

type PaginationResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Meta    MetaData    `json:"meta"`
}

type SellerGroupView struct {
	SellerID string          `json:"seller_id"`
	Entries  []CartEntry     `json:"entries"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	Entries []CartEntry       `json:"entries"`
	Groups  []SellerGroupView `json:"groups"`
	Total   decimal.Decimal   `json:"total"`
}
