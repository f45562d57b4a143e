package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"farmconnect/models"

	"github.com/shopspring/decimal"
)

const (
	// listings newer than this count as the current market
	trendWindow = 14 * 24 * time.Hour
	// percent change between older and recent medians that counts as a trend
	trendThreshold = 5
)

var hundred = decimal.NewFromInt(100)

// RecommendPrice compares price with the other listings of the same category
// and unit. The seller's own listings are left out of the sample. A zero
// price skips the comparison line in the reasoning.
func (s *ProductService) RecommendPrice(ctx context.Context, sellerID string, category models.Category, unit models.Unit, price decimal.Decimal) (*models.PriceRecommendation, error) {
	if !category.Valid() {
		return nil, models.Validationf("unknown category %q", category)
	}
	if !unit.Valid() {
		return nil, models.Validationf("unknown unit %q", unit)
	}
	if price.IsNegative() {
		return nil, models.Validationf("price cannot be negative")
	}

	products, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-trendWindow)
	var prices, recent, older []decimal.Decimal
	for _, p := range products {
		if p.Category != category || p.Unit != unit || p.SellerID == sellerID || !p.Price.IsPositive() {
			continue
		}
		prices = append(prices, p.Price)
		if p.CreatedAt.After(cutoff) {
			recent = append(recent, p.Price)
		} else {
			older = append(older, p.Price)
		}
	}
	if len(prices) == 0 {
		return nil, models.NotFoundf("no other %s listings sold per %s to compare with", category, unit)
	}

	sortPrices(prices)
	rec := &models.PriceRecommendation{
		Category:         category,
		Unit:             unit,
		RecommendedPrice: median(prices).Round(2),
		MinPrice:         percentile(prices, 25),
		MaxPrice:         percentile(prices, 75),
		SampleSize:       len(prices),
		Confidence:       min(95, 40+10*len(prices)),
		MarketTrend:      marketTrend(recent, older),
	}

	rec.Reasoning = []string{
		fmt.Sprintf("Based on %d %s listings sold per %s", len(prices), category, unit),
		fmt.Sprintf("Most listings ask between %s and %s per %s", rec.MinPrice.StringFixed(2), rec.MaxPrice.StringFixed(2), unit),
	}
	switch rec.MarketTrend {
	case models.TrendRising:
		rec.Reasoning = append(rec.Reasoning, "Recent listings ask more than older ones")
	case models.TrendFalling:
		rec.Reasoning = append(rec.Reasoning, "Recent listings ask less than older ones")
	default:
		rec.Reasoning = append(rec.Reasoning, "Prices have held steady")
	}
	if price.IsPositive() {
		diff := price.Sub(rec.RecommendedPrice).Div(rec.RecommendedPrice).Mul(hundred).Round(0)
		switch diff.Sign() {
		case 1:
			rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("Your price is %s%% above the recommendation", diff))
		case -1:
			rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("Your price is %s%% below the recommendation", diff.Abs()))
		default:
			rec.Reasoning = append(rec.Reasoning, "Your price matches the recommendation")
		}
	}
	return rec, nil
}

func sortPrices(prices []decimal.Decimal) {
	slices.SortFunc(prices, func(a, b decimal.Decimal) int { return a.Cmp(b) })
}

// median expects sorted, non-empty prices.
func median(prices []decimal.Decimal) decimal.Decimal {
	n := len(prices)
	if n%2 == 1 {
		return prices[n/2]
	}
	return prices[n/2-1].Add(prices[n/2]).Div(decimal.NewFromInt(2))
}

// percentile uses the nearest-rank method on sorted, non-empty prices.
func percentile(prices []decimal.Decimal, p int) decimal.Decimal {
	idx := (p*len(prices)+99)/100 - 1
	return prices[max(idx, 0)]
}

func marketTrend(recent, older []decimal.Decimal) models.MarketTrend {
	if len(recent) == 0 || len(older) == 0 {
		return models.TrendStable
	}
	sortPrices(recent)
	sortPrices(older)
	before := median(older)
	change := median(recent).Sub(before).Div(before).Mul(hundred)
	switch {
	case change.GreaterThan(decimal.NewFromInt(trendThreshold)):
		return models.TrendRising
	case change.LessThan(decimal.NewFromInt(-trendThreshold)):
		return models.TrendFalling
	}
	return models.TrendStable
}
