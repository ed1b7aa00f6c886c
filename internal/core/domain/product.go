package domain

import (
	"strings"
	"time"
)

// ProductCondition describes the physical state of a listed item.
type ProductCondition string

const (
	ConditionNew      ProductCondition = "New"
	ConditionLikeNew  ProductCondition = "LikeNew"
	ConditionUsed     ProductCondition = "Used"
	ConditionForParts ProductCondition = "ForParts"
)

// ParseProductCondition maps textual input onto a known condition; the second
// result is false for unrecognised values.
func ParseProductCondition(value string) (ProductCondition, bool) {
	switch strings.TrimSpace(value) {
	case string(ConditionNew):
		return ConditionNew, true
	case string(ConditionLikeNew):
		return ConditionLikeNew, true
	case string(ConditionUsed):
		return ConditionUsed, true
	case string(ConditionForParts):
		return ConditionForParts, true
	default:
		return "", false
	}
}

// ProductStatus tracks a listing through its lifecycle.
type ProductStatus string

const (
	ProductActive   ProductStatus = "Active"
	ProductReserved ProductStatus = "Reserved"
	ProductSold     ProductStatus = "Sold"
	ProductArchived ProductStatus = "Archived"
)

// ParseProductStatus maps textual input onto a known status; the second result
// is false for unrecognised values.
func ParseProductStatus(value string) (ProductStatus, bool) {
	switch strings.TrimSpace(value) {
	case string(ProductActive):
		return ProductActive, true
	case string(ProductReserved):
		return ProductReserved, true
	case string(ProductSold):
		return ProductSold, true
	case string(ProductArchived):
		return ProductArchived, true
	default:
		return "", false
	}
}

// Product is a marketplace listing owned by a seller user.
type Product struct {
	ID           string
	SellerUserID string
	Title        string
	Description  string
	Price        int
	Condition    ProductCondition
	Status       ProductStatus
	Images       []ProductImage

	Deletion  Deletion
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// ProductImage is one ordered photo attached to a listing.
type ProductImage struct {
	ID        string
	ProductID string
	ImageURL  string
	Order     int
	CreatedAt time.Time
}

// ProductFilter narrows an active-listing search.
type ProductFilter struct {
	Query     string
	Condition *ProductCondition
	MinPrice  *int
	MaxPrice  *int
	SortBy    ProductSort
}

// ProductSort selects the ordering of search results.
type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
)

// ParseProductSort normalises sort input, defaulting to newest-first.
func ParseProductSort(value string) ProductSort {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(SortPriceAsc):
		return SortPriceAsc
	case string(SortPriceDesc):
		return SortPriceDesc
	default:
		return SortNewest
	}
}
