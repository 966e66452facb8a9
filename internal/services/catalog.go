package services

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"shoplite/internal/models"
	"shoplite/internal/money"

	"github.com/shopspring/decimal"
)

const (
	// DescriptionWidth is the display width product descriptions are shortened to.
	DescriptionWidth = 120
	// DefaultPageSize is used when a caller does not ask for a page size.
	DefaultPageSize = 12

	demoDescription = "Produit démo, livraison rapide, satisfait ou remboursé. Parfait pour tester la boutique."
	ellipsis        = "…"
)

// PageSizes lists the page sizes offered to shoppers.
var PageSizes = []int{6, 9, 12, 15, 18, 24}

var (
	basePrice    = decimal.RequireFromString("4.99")
	priceStep    = decimal.RequireFromString("1.75")
	priceModulus = decimal.NewFromInt(60)
)

const baseRating = 3.2

// Generate builds a deterministic demo catalog of n products with ids 1..n.
func Generate(n int) []models.Product {
	if n <= 0 {
		return []models.Product{}
	}
	products := make([]models.Product, 0, n)
	for i := 1; i <= n; i++ {
		idx := decimal.NewFromInt(int64(i))
		price := basePrice.Add(priceStep.Mul(idx).Mod(priceModulus)).Round(2)
		rating := money.Round1(baseRating + float64((i*37)%18)/10)

		products = append(products, models.Product{
			ID:          int64(i),
			Title:       fmt.Sprintf("Produit %02d", i),
			Description: Shorten(demoDescription, DescriptionWidth),
			Price:       price.InexactFloat64(),
			Category:    models.Categories[i%len(models.Categories)],
			Rating:      clampRating(rating),
			Stock:       3 + (i*7)%30,
		})
	}
	return products
}

func clampRating(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 5:
		return 5
	}
	return r
}

// Shorten collapses whitespace and truncates text to at most width runes,
// cutting on a word boundary and appending an ellipsis when truncated.
func Shorten(text string, width int) string {
	words := strings.Fields(text)
	joined := strings.Join(words, " ")
	if utf8.RuneCountInString(joined) <= width {
		return joined
	}

	budget := width - utf8.RuneCountInString(ellipsis)
	var b strings.Builder
	used := 0
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		if used > 0 {
			n++
		}
		if used+n > budget {
			break
		}
		if used > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		used += n
	}
	if used == 0 {
		return ellipsis
	}
	return b.String() + ellipsis
}

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64
	Max float64
}

// Contains reports whether price lies within the range.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// Filter selects catalog products. Zero values select everything: an empty
// query and category set match all products and a nil Price is unbounded.
type Filter struct {
	Query      string
	Categories []string
	Price      *PriceRange
	MinRating  float64
}

// Apply returns the products matching the filter, in their original order.
// The input slice is not modified.
func (f Filter) Apply(products []models.Product) []models.Product {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	categories := make(map[string]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		categories[c] = struct{}{}
	}

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Title), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		if len(categories) > 0 {
			if _, ok := categories[p.Category]; !ok {
				continue
			}
		}
		if f.Price != nil && !f.Price.Contains(p.Price) {
			continue
		}
		if p.Rating < f.MinRating {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortKey selects a catalog ordering.
type SortKey string

const (
	SortRelevance  SortKey = "relevance"
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortRatingDesc SortKey = "rating_desc"
	SortStockDesc  SortKey = "stock_desc"
)

// ParseSortKey maps a request value onto a SortKey. The empty string means
// relevance.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortRatingDesc, SortStockDesc:
		return k, nil
	}
	return "", fmt.Errorf("sort key %q: %w", s, ErrUnknownSortKey)
}

// Sort returns a stably sorted copy of products. Relevance keeps the input order.
func Sort(products []models.Product, key SortKey) []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)

	var less func(a, b models.Product) bool
	switch key {
	case SortPriceAsc:
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b models.Product) bool { return a.Price > b.Price }
	case SortRatingDesc:
		less = func(a, b models.Product) bool { return a.Rating > b.Rating }
	case SortStockDesc:
		less = func(a, b models.Product) bool { return a.Stock > b.Stock }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// PageInfo describes a page of results.
type PageInfo struct {
	Page     int `json:"page"`
	Pages    int `json:"pages"`
	Total    int `json:"total"`
	PageSize int `json:"per_page"`
}

// Paginate returns the requested 1-based page. The page number is clamped
// into [1, pages], and there is always at least one page.
func Paginate(products []models.Product, pageSize, page int) ([]models.Product, PageInfo) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(products)
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	info := PageInfo{Page: page, Pages: pages, Total: total, PageSize: pageSize}
	return products[start:end], info
}

// CategoriesOf returns the distinct categories present, sorted.
func CategoriesOf(products []models.Product) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// PriceBounds returns the lowest and highest price. Both are zero for an
// empty catalog.
func PriceBounds(products []models.Product) (lo, hi float64) {
	for i, p := range products {
		if i == 0 || p.Price < lo {
			lo = p.Price
		}
		if i == 0 || p.Price > hi {
			hi = p.Price
		}
	}
	return lo, hi
}
