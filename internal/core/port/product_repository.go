package port

import (
	"context"

	"github.com/Deaglesso/Second/internal/core/domain"
)

// Page bounds a list query.
type Page struct {
	Offset int
	Limit  int
}

// ProductRepository persists listings and their images.
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListActive(ctx context.Context, filter domain.ProductFilter, page Page) ([]domain.Product, int, error)
	ListBySeller(ctx context.Context, sellerUserID string, page Page) ([]domain.Product, int, error)
	CountActiveBySeller(ctx context.Context, sellerUserID string) (int, error)
	Update(ctx context.Context, product domain.Product) error
	SoftDelete(ctx context.Context, id string) error

	AddImage(ctx context.Context, image domain.ProductImage) error
	GetImageByID(ctx context.Context, imageID string) (*domain.ProductImage, error)
	RemoveImage(ctx context.Context, imageID string) error
}
