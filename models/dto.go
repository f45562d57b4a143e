package models

import "github.com/shopspring/decimal"

type SignupRequest struct {
	Email    string          `json:"email" form:"email" binding:"required,email"`
	Password string          `json:"password" form:"password" binding:"required,min=6"`
	Metadata AccountMetadata `json:"metadata"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type CreateProfileRequest struct {
	ID       string `json:"id" binding:"required,uuid"`
	Name     string `json:"name" binding:"required,min=2"`
	Role     Role   `json:"role" binding:"required,role"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
}

// UpdateProfileRequest carries a partial update; nil fields are left as they are.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,min=2"`
	Location *string `json:"location,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type CreateProductRequest struct {
	Name        string          `json:"name" form:"name" binding:"required"`
	Description string          `json:"description" form:"description"`
	Price       decimal.Decimal `json:"price" form:"price" binding:"gt=0"`
	Quantity    decimal.Decimal `json:"quantity" form:"quantity" binding:"gte=0"`
	Unit        Unit            `json:"unit" form:"unit" binding:"required,unit"`
	Category    Category        `json:"category" form:"category" binding:"required,category"`
	Location    string          `json:"location" form:"location" binding:"required"`
	ImageURL    string          `json:"image_url" form:"image_url" binding:"omitempty,url"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	Unit        *Unit            `json:"unit,omitempty" binding:"omitempty,unit"`
	Category    *Category        `json:"category,omitempty" binding:"omitempty,category"`
	Location    *string          `json:"location,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty" binding:"omitempty,url"`
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required,order_status"`
}
