package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
	"github.com/Deaglesso/Second/internal/repository"
)

var productColumns = []string{
	"id",
	"seller_user_id",
	"title",
	"description",
	"price",
	"condition",
	"status",
	"is_deleted",
	"deleted_at",
	"created_at",
	"updated_at",
}

// ProductRepository implements port.ProductRepository using PostgreSQL.
type ProductRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProductRepository wires a PostgreSQL-backed product repository.
func NewProductRepository(exec pgExecutor) *ProductRepository {
	return &ProductRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *ProductRepository) WithTx(tx pgx.Tx) *ProductRepository {
	if tx == nil {
		return r
	}
	return &ProductRepository{
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a listing.
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) error {
	isDeleted, deletedAt := product.Deletion.Columns()

	stmt, args, err := r.builder.Insert("second.products").
		Columns(
			"id",
			"seller_user_id",
			"title",
			"description",
			"price",
			"condition",
			"status",
			"is_deleted",
			"deleted_at",
			"created_at",
		).
		Values(
			product.ID,
			product.SellerUserID,
			product.Title,
			product.Description,
			product.Price,
			product.Condition,
			product.Status,
			isDeleted,
			deletedAt,
			product.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert product sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a non-deleted listing with its images.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	stmt, args, err := r.builder.
		Select(productColumns...).
		From("second.products").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"is_deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select product sql: %w", err)
	}

	product, err := scanProduct(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}

	images, err := r.listImages(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	product.Images = images

	return product, nil
}

// ListActive returns active listings matching the filter plus the unpaged
// total.
func (r *ProductRepository) ListActive(ctx context.Context, filter domain.ProductFilter, page port.Page) ([]domain.Product, int, error) {
	base := r.builder.
		Select(productColumns...).
		From("second.products").
		Where(squirrel.Eq{"is_deleted": false}).
		Where(squirrel.Eq{"status": domain.ProductActive})

	countQuery := r.builder.
		Select("COUNT(*)").
		From("second.products").
		Where(squirrel.Eq{"is_deleted": false}).
		Where(squirrel.Eq{"status": domain.ProductActive})

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		cond := squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"description": pattern},
		}
		base = base.Where(cond)
		countQuery = countQuery.Where(cond)
	}
	if filter.Condition != nil {
		base = base.Where(squirrel.Eq{"condition": *filter.Condition})
		countQuery = countQuery.Where(squirrel.Eq{"condition": *filter.Condition})
	}
	if filter.MinPrice != nil {
		base = base.Where(squirrel.GtOrEq{"price": *filter.MinPrice})
		countQuery = countQuery.Where(squirrel.GtOrEq{"price": *filter.MinPrice})
	}
	if filter.MaxPrice != nil {
		base = base.Where(squirrel.LtOrEq{"price": *filter.MaxPrice})
		countQuery = countQuery.Where(squirrel.LtOrEq{"price": *filter.MaxPrice})
	}

	switch filter.SortBy {
	case domain.SortPriceAsc:
		base = base.OrderBy("price ASC", "created_at DESC")
	case domain.SortPriceDesc:
		base = base.OrderBy("price DESC", "created_at DESC")
	default:
		base = base.OrderBy("created_at DESC")
	}

	if page.Limit > 0 {
		base = base.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		base = base.Offset(uint64(page.Offset))
	}

	products, err := r.queryProducts(ctx, base)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.count(ctx, countQuery)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// ListBySeller returns all non-deleted listings owned by the seller, any
// status included.
func (r *ProductRepository) ListBySeller(ctx context.Context, sellerUserID string, page port.Page) ([]domain.Product, int, error) {
	base := r.builder.
		Select(productColumns...).
		From("second.products").
		Where(squirrel.Eq{"seller_user_id": sellerUserID}).
		Where(squirrel.Eq{"is_deleted": false}).
		OrderBy("created_at DESC")

	if page.Limit > 0 {
		base = base.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		base = base.Offset(uint64(page.Offset))
	}

	products, err := r.queryProducts(ctx, base)
	if err != nil {
		return nil, 0, err
	}

	countQuery := r.builder.
		Select("COUNT(*)").
		From("second.products").
		Where(squirrel.Eq{"seller_user_id": sellerUserID}).
		Where(squirrel.Eq{"is_deleted": false})

	total, err := r.count(ctx, countQuery)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// CountActiveBySeller counts the seller's active listings for limit
// enforcement.
func (r *ProductRepository) CountActiveBySeller(ctx context.Context, sellerUserID string) (int, error) {
	query := r.builder.
		Select("COUNT(*)").
		From("second.products").
		Where(squirrel.Eq{"seller_user_id": sellerUserID}).
		Where(squirrel.Eq{"status": domain.ProductActive}).
		Where(squirrel.Eq{"is_deleted": false})

	return r.count(ctx, query)
}

// Update persists the mutable fields of a listing.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	isDeleted, deletedAt := product.Deletion.Columns()

	stmt, args, err := r.builder.Update("second.products").
		Set("title", product.Title).
		Set("description", product.Description).
		Set("price", product.Price).
		Set("condition", product.Condition).
		Set("status", product.Status).
		Set("is_deleted", isDeleted).
		Set("deleted_at", deletedAt).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": product.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update product sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete marks a listing as deleted.
func (r *ProductRepository) SoftDelete(ctx context.Context, id string) error {
	now := time.Now().UTC()

	stmt, args, err := r.builder.Update("second.products").
		Set("is_deleted", true).
		Set("deleted_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete product sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// AddImage attaches a photo to a listing.
func (r *ProductRepository) AddImage(ctx context.Context, image domain.ProductImage) error {
	stmt, args, err := r.builder.Insert("second.product_images").
		Columns("id", "product_id", "image_url", "sort_order", "created_at").
		Values(image.ID, image.ProductID, image.ImageURL, image.Order, image.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert product image sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert product image: %w", err)
	}

	return nil
}

// GetImageByID retrieves a single image.
func (r *ProductRepository) GetImageByID(ctx context.Context, imageID string) (*domain.ProductImage, error) {
	stmt, args, err := r.builder.
		Select("id", "product_id", "image_url", "sort_order", "created_at").
		From("second.product_images").
		Where(squirrel.Eq{"id": imageID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select product image sql: %w", err)
	}

	var image domain.ProductImage
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&image.ID,
		&image.ProductID,
		&image.ImageURL,
		&image.Order,
		&image.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan product image: %w", err)
	}

	return &image, nil
}

// RemoveImage deletes a single image row.
func (r *ProductRepository) RemoveImage(ctx context.Context, imageID string) error {
	stmt, args, err := r.builder.Delete("second.product_images").
		Where(squirrel.Eq{"id": imageID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete product image sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete product image: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *ProductRepository) listImages(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	stmt, args, err := r.builder.
		Select("id", "product_id", "image_url", "sort_order", "created_at").
		From("second.product_images").
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("sort_order ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select product images sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query product images: %w", err)
	}
	defer rows.Close()

	images := make([]domain.ProductImage, 0)
	for rows.Next() {
		var image domain.ProductImage
		if err := rows.Scan(&image.ID, &image.ProductID, &image.ImageURL, &image.Order, &image.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		images = append(images, image)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product images: %w", err)
	}

	return images, nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, query squirrel.SelectBuilder) ([]domain.Product, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list products sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) count(ctx context.Context, query squirrel.SelectBuilder) (int, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count products sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan products count: %w", err)
	}

	return int(count), nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		product   domain.Product
		isDeleted bool
		deletedAt *time.Time
	)

	if err := row.Scan(
		&product.ID,
		&product.SellerUserID,
		&product.Title,
		&product.Description,
		&product.Price,
		&product.Condition,
		&product.Status,
		&isDeleted,
		&deletedAt,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	product.Deletion = domain.DeletionFromColumns(isDeleted, deletedAt)

	return &product, nil
}

func scanProductRow(rows pgx.Rows) (*domain.Product, error) {
	return scanProduct(rows)
}

var _ port.ProductRepository = (*ProductRepository)(nil)
