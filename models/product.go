package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Unit string

const (
	UnitKg    Unit = "kg"
	UnitGram  Unit = "g"
	UnitPiece Unit = "piece"
	UnitDozen Unit = "dozen"
	UnitCrate Unit = "crate"
	UnitBag   Unit = "bag"
)

var Units = []Unit{UnitKg, UnitGram, UnitPiece, UnitDozen, UnitCrate, UnitBag}

func (u Unit) Valid() bool {
	for _, v := range Units {
		if u == v {
			return true
		}
	}
	return false
}

type Category string

const (
	CategoryVegetables Category = "Vegetables"
	CategoryFruits     Category = "Fruits"
	CategoryGrains     Category = "Grains"
	CategoryDairy      Category = "Dairy"
	CategoryMeat       Category = "Meat"
	CategoryOther      Category = "Other"
)

var Categories = []Category{
	CategoryVegetables,
	CategoryFruits,
	CategoryGrains,
	CategoryDairy,
	CategoryMeat,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        Unit            `json:"unit"`
	Category    Category        `json:"category"`
	Location    string          `json:"location"`
	ImageURL    string          `json:"image_url"`
	SellerID    string          `json:"seller_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AvailableUnits is the whole number of units a buyer can take.
func (p Product) AvailableUnits() int {
	if p.Quantity.IsNegative() {
		return 0
	}
	return int(p.Quantity.Floor().IntPart())
}

type MarketTrend string

const (
	TrendRising  MarketTrend = "rising"
	TrendFalling MarketTrend = "falling"
	TrendStable  MarketTrend = "stable"
)

// PriceRecommendation suggests a listing price from what other listings of
// the same category and unit ask.
type PriceRecommendation struct {
	Category         Category        `json:"category"`
	Unit             Unit            `json:"unit"`
	RecommendedPrice decimal.Decimal `json:"recommended_price"`
	MinPrice         decimal.Decimal `json:"min_price"`
	MaxPrice         decimal.Decimal `json:"max_price"`
	SampleSize       int             `json:"sample_size"`
	Confidence       int             `json:"confidence"`
	MarketTrend      MarketTrend     `json:"market_trend"`
	Reasoning        []string        `json:"reasoning"`
}
