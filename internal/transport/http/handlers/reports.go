package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/transport/http/middleware"
	"github.com/Deaglesso/Second/internal/usecase"
)

// ReportHandler exposes complaint endpoints.
type ReportHandler struct {
	reports *usecase.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *usecase.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// RegisterRoutes binds the authenticated report routes.
func (h *ReportHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.file)
	r.GET("/mine", h.mine)
}

// RegisterAdminRoutes binds the moderation routes.
func (h *ReportHandler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/reports", h.listByTarget)
}

var reportErrorCases = []ErrorCase{
	{Err: usecase.ErrReportTargetNotFound, Status: http.StatusNotFound, Message: "report target not found"},
	{Err: usecase.ErrEmptyReportReason, Status: http.StatusBadRequest, Message: "reason is required"},
	{Err: usecase.ErrSelfReport, Status: http.StatusBadRequest, Message: "cannot report yourself or your own listing"},
}

// File godoc
// @Summary File a complaint against a user or a listing
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReportCreateRequest true "Report payload"
// @Success 201 {object} ReportPayload
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/reports [post]
func (h *ReportHandler) file(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ReportCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid report payload"))
		return
	}

	targetType, ok := domain.ParseReportTargetType(req.TargetType)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown target type"))
		return
	}

	report, err := h.reports.File(c.Request.Context(), userID, targetType, req.TargetID, req.Reason)
	if err != nil {
		RespondWithMappedError(c, err, reportErrorCases, http.StatusInternalServerError, "failed to file report")
		return
	}

	c.JSON(http.StatusCreated, newReportPayload(*report))
}

// Mine godoc
// @Summary List reports filed by the caller
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ReportListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/reports/mine [get]
func (h *ReportHandler) mine(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	page := pageFromQuery(c)
	reports, total, err := h.reports.ListByReporter(c.Request.Context(), userID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list reports"))
		return
	}

	c.JSON(http.StatusOK, newReportListResponse(reports, total, page.Offset, page.Limit))
}

// ListByTarget godoc
// @Summary List reports filed against one target (moderation)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param target_type query string true "Target type" Enums(User, Product)
// @Param target_id query string true "Target ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ReportListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/reports [get]
func (h *ReportHandler) listByTarget(c *gin.Context) {
	targetType, ok := domain.ParseReportTargetType(c.Query("target_type"))
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown target type"))
		return
	}

	targetID := c.Query("target_id")
	if targetID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "target_id is required"))
		return
	}

	page := pageFromQuery(c)
	reports, total, err := h.reports.ListByTarget(c.Request.Context(), targetType, targetID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list reports"))
		return
	}

	c.JSON(http.StatusOK, newReportListResponse(reports, total, page.Offset, page.Limit))
}

func newReportListResponse(reports []domain.Report, total, offset, limit int) ReportListResponse {
	payloads := make([]ReportPayload, 0, len(reports))
	for _, report := range reports {
		payloads = append(payloads, newReportPayload(report))
	}

	return ReportListResponse{
		Reports: payloads,
		Total:   total,
		Offset:  offset,
		Limit:   limit,
	}
}
