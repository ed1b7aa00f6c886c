package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/transport/http/middleware"
	"github.com/Deaglesso/Second/internal/usecase"
)

// ProductHandler exposes marketplace listing endpoints.
type ProductHandler struct {
	products *usecase.ProductService
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(products *usecase.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// RegisterPublicRoutes binds the unauthenticated catalogue routes.
func (h *ProductHandler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("", h.search)
	r.GET("/:id", h.get)
}

// RegisterProtectedRoutes binds the seller-facing listing routes.
func (h *ProductHandler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.PATCH("/:id", h.update)
	r.DELETE("/:id", h.remove)
	r.POST("/:id/images", h.addImage)
	r.DELETE("/:id/images/:imageID", h.removeImage)
}

// RegisterMineRoutes binds the caller's own-listing routes.
func (h *ProductHandler) RegisterMineRoutes(r *gin.RouterGroup) {
	r.GET("/products", h.mine)
}

var productErrorCases = []ErrorCase{
	{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
	{Err: usecase.ErrNotProductOwner, Status: http.StatusForbidden, Message: "not the product owner"},
	{Err: usecase.ErrNotSeller, Status: http.StatusForbidden, Message: "seller role required"},
	{Err: usecase.ErrListingLimitReached, Status: http.StatusUnprocessableEntity, Message: "active listing limit reached"},
	{Err: usecase.ErrInvalidProductInput, Status: http.StatusBadRequest, Message: "invalid product input"},
	{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
}

// Search godoc
// @Summary Search active listings
// @Tags Products
// @Produce json
// @Param q query string false "Full-text query over title and description"
// @Param condition query string false "Condition filter" Enums(New, LikeNew, Used, ForParts)
// @Param min_price query int false "Minimum price"
// @Param max_price query int false "Maximum price"
// @Param sort query string false "Sort order" Enums(newest, price_asc, price_desc)
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ProductListResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/products [get]
func (h *ProductHandler) search(c *gin.Context) {
	filter := domain.ProductFilter{
		Query:  c.Query("q"),
		SortBy: domain.ParseProductSort(c.Query("sort")),
	}

	if raw := c.Query("condition"); raw != "" {
		condition, ok := domain.ParseProductCondition(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown condition"))
			return
		}
		filter.Condition = &condition
	}

	if raw := c.Query("min_price"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "min_price must be a non-negative integer"))
			return
		}
		filter.MinPrice = &value
	}

	if raw := c.Query("max_price"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "max_price must be a non-negative integer"))
			return
		}
		filter.MaxPrice = &value
	}

	page := pageFromQuery(c)
	products, total, err := h.products.Search(c.Request.Context(), filter, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to search products"))
		return
	}

	c.JSON(http.StatusOK, ProductListResponse{
		Products: newProductPayloads(products),
		Total:    total,
		Offset:   page.Offset,
		Limit:    page.Limit,
	})
}

// Get godoc
// @Summary Fetch one listing with its images
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} ProductPayload
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) get(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, productErrorCases, http.StatusInternalServerError, "failed to load product")
		return
	}

	c.JSON(http.StatusOK, newProductPayload(*product))
}

// Create godoc
// @Summary List a new product
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProductCreateRequest true "Listing payload"
// @Success 201 {object} ProductPayload
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/products [post]
func (h *ProductHandler) create(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid product payload"))
		return
	}

	condition, ok := domain.ParseProductCondition(req.Condition)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown condition"))
		return
	}

	product, err := h.products.Create(c.Request.Context(), userID, usecase.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Condition:   condition,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		RespondWithMappedError(c, err, productErrorCases, http.StatusInternalServerError, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, newProductPayload(*product))
}

// Update godoc
// @Summary Update an owned listing
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body ProductUpdateRequest true "Fields to change"
// @Success 200 {object} ProductPayload
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/products/{id} [patch]
func (h *ProductHandler) update(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid product payload"))
		return
	}

	input := usecase.UpdateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
	}

	if req.Condition != nil {
		condition, ok := domain.ParseProductCondition(*req.Condition)
		if !ok {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown condition"))
			return
		}
		input.Condition = &condition
	}

	if req.Status != nil {
		status, ok := domain.ParseProductStatus(*req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown status"))
			return
		}
		input.Status = &status
	}

	product, err := h.products.Update(c.Request.Context(), c.Param("id"), userID, input)
	if err != nil {
		RespondWithMappedError(c, err, productErrorCases, http.StatusInternalServerError, "failed to update product")
		return
	}

	c.JSON(http.StatusOK, newProductPayload(*product))
}

// Delete godoc
// @Summary Remove an owned listing
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 204 {string} string ""
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/products/{id} [delete]
func (h *ProductHandler) remove(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.products.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		RespondWithMappedError(c, err, productErrorCases, http.StatusInternalServerError, "failed to delete product")
		return
	}

	c.Status(http.StatusNoContent)
}

// AddImage godoc
// @Summary Attach a photo to an owned listing
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body ProductImageRequest true "Image payload"
// @Success 201 {object} ProductImagePayload
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/products/{id}/images [post]
func (h *ProductHandler) addImage(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ProductImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "image_url is required"))
		return
	}

	image, err := h.products.AddImage(c.Request.Context(), c.Param("id"), userID, req.ImageURL)
	if err != nil {
		RespondWithMappedError(c, err, productErrorCases, http.StatusInternalServerError, "failed to add image")
		return
	}

	c.JSON(http.StatusCreated, ProductImagePayload{
		ID:       image.ID,
		ImageURL: image.ImageURL,
		Order:    image.Order,
	})
}

// RemoveImage godoc
// @Summary Detach a photo from an owned listing
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param imageID path string true "Image ID"
// @Success 204 {string} string ""
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/products/{id}/images/{imageID} [delete]
func (h *ProductHandler) removeImage(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.products.RemoveImage(c.Request.Context(), c.Param("id"), userID, c.Param("imageID")); err != nil {
		RespondWithMappedError(c, err, productErrorCases, http.StatusInternalServerError, "failed to remove image")
		return
	}

	c.Status(http.StatusNoContent)
}

// Mine godoc
// @Summary List the caller's own listings regardless of status
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ProductListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users/me/products [get]
func (h *ProductHandler) mine(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	page := pageFromQuery(c)
	products, total, err := h.products.ListBySeller(c.Request.Context(), userID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list products"))
		return
	}

	c.JSON(http.StatusOK, ProductListResponse{
		Products: newProductPayloads(products),
		Total:    total,
		Offset:   page.Offset,
		Limit:    page.Limit,
	})
}
