package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
	"github.com/Deaglesso/Second/internal/repository"
)

var (
	// ErrProductNotFound indicates the listing does not exist or is deleted.
	ErrProductNotFound = errors.New("product not found")
	// ErrNotProductOwner indicates the caller does not own the listing.
	ErrNotProductOwner = errors.New("not the product owner")
	// ErrNotSeller indicates the caller has not become a seller yet.
	ErrNotSeller = errors.New("user is not a seller")
	// ErrListingLimitReached indicates the seller is at their active-listing cap.
	ErrListingLimitReached = errors.New("listing limit reached")
	// ErrInvalidProductInput indicates a field failed validation.
	ErrInvalidProductInput = errors.New("invalid product input")
)

// CreateProductInput carries the fields of a new listing.
type CreateProductInput struct {
	Title       string
	Description string
	Price       int
	Condition   domain.ProductCondition
	ImageURLs   []string
}

// UpdateProductInput carries the mutable fields of a listing. Nil means leave
// unchanged.
type UpdateProductInput struct {
	Title       *string
	Description *string
	Price       *int
	Condition   *domain.ProductCondition
	Status      *domain.ProductStatus
}

// ProductService manages marketplace listings.
type ProductService struct {
	users    port.UserRepository
	products port.ProductRepository
	events   port.EventPublisher
	log      *zap.Logger
}

// NewProductService constructs a ProductService instance.
func NewProductService(users port.UserRepository, products port.ProductRepository, events port.EventPublisher, log *zap.Logger) *ProductService {
	return &ProductService{
		users:    users,
		products: products,
		events:   events,
		log:      log,
	}
}

// Create lists a new product for the seller, enforcing the per-seller active
// listing cap.
func (s *ProductService) Create(ctx context.Context, sellerUserID string, input CreateProductInput) (*domain.Product, error) {
	if err := validateProductInput(input.Title, input.Price); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, sellerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup seller: %w", err)
	}

	if !user.IsSeller() {
		return nil, ErrNotSeller
	}

	active, err := s.products.CountActiveBySeller(ctx, sellerUserID)
	if err != nil {
		return nil, fmt.Errorf("count active listings: %w", err)
	}
	if active >= user.ListingLimit {
		return nil, ErrListingLimitReached
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:           uuid.NewString(),
		SellerUserID: sellerUserID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Price:        input.Price,
		Condition:    input.Condition,
		Status:       domain.ProductActive,
		CreatedAt:    now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	for i, rawURL := range input.ImageURLs {
		image := domain.ProductImage{
			ID:        uuid.NewString(),
			ProductID: product.ID,
			ImageURL:  rawURL,
			Order:     i,
			CreatedAt: now,
		}
		if err := s.products.AddImage(ctx, image); err != nil {
			return nil, fmt.Errorf("add product image: %w", err)
		}
		product.Images = append(product.Images, image)
	}

	if err := s.events.PublishProductListed(ctx, domain.ProductListedEvent{
		ProductID:    product.ID,
		SellerUserID: sellerUserID,
		Title:        product.Title,
		Price:        product.Price,
		ListedAt:     now,
	}); err != nil {
		s.log.Warn("publish product listed event failed", zap.Error(err))
	}

	return &product, nil
}

// Get returns one listing with its images.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}
	return product, nil
}

// Search returns active listings matching the filter and the unpaged total.
func (s *ProductService) Search(ctx context.Context, filter domain.ProductFilter, page port.Page) ([]domain.Product, int, error) {
	return s.products.ListActive(ctx, filter, page)
}

// ListBySeller returns a seller's listings regardless of status.
func (s *ProductService) ListBySeller(ctx context.Context, sellerUserID string, page port.Page) ([]domain.Product, int, error) {
	return s.products.ListBySeller(ctx, sellerUserID, page)
}

// Update modifies an owned listing.
func (s *ProductService) Update(ctx context.Context, productID, callerID string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.ownedProduct(ctx, productID, callerID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		product.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Condition != nil {
		product.Condition = *input.Condition
	}
	if input.Status != nil {
		product.Status = *input.Status
	}

	if err := validateProductInput(product.Title, product.Price); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, *product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// Delete soft-deletes an owned listing.
func (s *ProductService) Delete(ctx context.Context, productID, callerID string) error {
	if _, err := s.ownedProduct(ctx, productID, callerID); err != nil {
		return err
	}

	if err := s.products.SoftDelete(ctx, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	return nil
}

// AddImage attaches a photo to an owned listing.
func (s *ProductService) AddImage(ctx context.Context, productID, callerID, imageURL string) (*domain.ProductImage, error) {
	product, err := s.ownedProduct(ctx, productID, callerID)
	if err != nil {
		return nil, err
	}

	image := domain.ProductImage{
		ID:        uuid.NewString(),
		ProductID: product.ID,
		ImageURL:  imageURL,
		Order:     len(product.Images),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.products.AddImage(ctx, image); err != nil {
		return nil, fmt.Errorf("add product image: %w", err)
	}

	return &image, nil
}

// RemoveImage detaches a photo from an owned listing.
func (s *ProductService) RemoveImage(ctx context.Context, productID, callerID, imageID string) error {
	if _, err := s.ownedProduct(ctx, productID, callerID); err != nil {
		return err
	}

	image, err := s.products.GetImageByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("lookup product image: %w", err)
	}

	if image.ProductID != productID {
		return ErrNotProductOwner
	}

	if err := s.products.RemoveImage(ctx, imageID); err != nil {
		return fmt.Errorf("remove product image: %w", err)
	}

	return nil
}

func (s *ProductService) ownedProduct(ctx context.Context, productID, callerID string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}

	if product.SellerUserID != callerID {
		return nil, ErrNotProductOwner
	}

	return product, nil
}

func validateProductInput(title string, price int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidProductInput)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProductInput)
	}
	return nil
}
