// Package catalog narrows and orders product listings for browsing.
package catalog

import (
	"net/url"
	"slices"
	"strings"

	"farmconnect/models"

	"github.com/shopspring/decimal"
)

const (
	AllLocations  = "All Locations"
	AllCategories = "All Categories"
)

type SortOrder string

const (
	SortNone      SortOrder = ""
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortNameAsc   SortOrder = "name_asc"
	SortNameDesc  SortOrder = "name_desc"
)

func (s SortOrder) Valid() bool {
	switch s {
	case SortNone, SortNewest, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

// Criteria is the set of filters applied to a listing. Empty strings and
// the "All ..." sentinels match everything; nil price bounds are open.
type Criteria struct {
	Search   string
	Location string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     SortOrder
}

// FilterProducts returns the products matching every criterion, in input
// order unless c.Sort is set. The input slice is not modified.
func FilterProducts(products []models.Product, c Criteria) []models.Product {
	search := strings.ToLower(strings.TrimSpace(c.Search))

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if matches(p, c, search) {
			out = append(out, p)
		}
	}

	sortProducts(out, c.Sort)
	return out
}

func matches(p models.Product, c Criteria, search string) bool {
	if search != "" &&
		!strings.Contains(strings.ToLower(p.Name), search) &&
		!strings.Contains(strings.ToLower(p.Description), search) {
		return false
	}
	if c.Location != "" && c.Location != AllLocations && p.Location != c.Location {
		return false
	}
	if c.Category != "" && c.Category != AllCategories && string(p.Category) != c.Category {
		return false
	}
	if c.MinPrice != nil && p.Price.LessThan(*c.MinPrice) {
		return false
	}
	if c.MaxPrice != nil && p.Price.GreaterThan(*c.MaxPrice) {
		return false
	}
	return true
}

func sortProducts(products []models.Product, order SortOrder) {
	var cmp func(a, b models.Product) int

	switch order {
	case SortNewest:
		cmp = func(a, b models.Product) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortPriceAsc:
		cmp = func(a, b models.Product) int { return a.Price.Cmp(b.Price) }
	case SortPriceDesc:
		cmp = func(a, b models.Product) int { return b.Price.Cmp(a.Price) }
	case SortNameAsc:
		cmp = func(a, b models.Product) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case SortNameDesc:
		cmp = func(a, b models.Product) int { return strings.Compare(strings.ToLower(b.Name), strings.ToLower(a.Name)) }
	default:
		return
	}

	slices.SortStableFunc(products, cmp)
}

// ParseCriteria reads search, location, category, min_price, max_price and
// sort from query parameters.
func ParseCriteria(q url.Values) (Criteria, error) {
	c := Criteria{
		Search:   strings.TrimSpace(q.Get("search")),
		Location: strings.TrimSpace(q.Get("location")),
		Category: strings.TrimSpace(q.Get("category")),
		Sort:     SortOrder(strings.TrimSpace(q.Get("sort"))),
	}

	if !c.Sort.Valid() {
		return Criteria{}, models.Validationf("unknown sort %q", c.Sort)
	}

	var err error
	if c.MinPrice, err = parsePrice(q.Get("min_price"), "min_price"); err != nil {
		return Criteria{}, err
	}
	if c.MaxPrice, err = parsePrice(q.Get("max_price"), "max_price"); err != nil {
		return Criteria{}, err
	}
	if c.MinPrice != nil && c.MaxPrice != nil && c.MinPrice.GreaterThan(*c.MaxPrice) {
		return Criteria{}, models.Validationf("min_price must not exceed max_price")
	}

	return c, nil
}

// Values encodes c as query parameters ParseCriteria reads back.
func (c Criteria) Values() url.Values {
	q := url.Values{}
	set := func(key, v string) {
		if v != "" {
			q.Set(key, v)
		}
	}
	set("search", c.Search)
	set("location", c.Location)
	set("category", c.Category)
	set("sort", string(c.Sort))
	if c.MinPrice != nil {
		q.Set("min_price", c.MinPrice.String())
	}
	if c.MaxPrice != nil {
		q.Set("max_price", c.MaxPrice.String())
	}
	return q
}

func parsePrice(raw, field string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, models.Validationf("%s is not a number", field)
	}
	if d.IsNegative() {
		return nil, models.Validationf("%s must not be negative", field)
	}
	return &d, nil
}
