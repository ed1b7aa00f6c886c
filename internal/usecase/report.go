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
	// ErrReportTargetNotFound indicates the reported user or product does not
	// exist.
	ErrReportTargetNotFound = errors.New("report target not found")
	// ErrEmptyReportReason indicates a blank reason.
	ErrEmptyReportReason = errors.New("report reason is required")
	// ErrSelfReport indicates a user tried to report themselves or their own
	// listing.
	ErrSelfReport = errors.New("cannot report yourself")
)

// ReportService files and lists abuse reports.
type ReportService struct {
	users    port.UserRepository
	products port.ProductRepository
	reports  port.ReportRepository
	events   port.EventPublisher
	log      *zap.Logger
}

// NewReportService constructs a ReportService instance.
func NewReportService(users port.UserRepository, products port.ProductRepository, reports port.ReportRepository, events port.EventPublisher, log *zap.Logger) *ReportService {
	return &ReportService{
		users:    users,
		products: products,
		reports:  reports,
		events:   events,
		log:      log,
	}
}

// File records a report against a user or a product after verifying the
// target exists.
func (s *ReportService) File(ctx context.Context, reporterID string, targetType domain.ReportTargetType, targetID, reason string) (*domain.Report, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrEmptyReportReason
	}

	switch targetType {
	case domain.ReportTargetUser:
		if targetID == reporterID {
			return nil, ErrSelfReport
		}
		if _, err := s.users.GetByID(ctx, targetID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrReportTargetNotFound
			}
			return nil, fmt.Errorf("lookup reported user: %w", err)
		}
	case domain.ReportTargetProduct:
		product, err := s.products.GetByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrReportTargetNotFound
			}
			return nil, fmt.Errorf("lookup reported product: %w", err)
		}
		if product.SellerUserID == reporterID {
			return nil, ErrSelfReport
		}
	default:
		return nil, fmt.Errorf("unknown report target type %q", targetType)
	}

	report := domain.Report{
		ID:         uuid.NewString(),
		ReporterID: reporterID,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     strings.TrimSpace(reason),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	if err := s.events.PublishReportFiled(ctx, domain.ReportFiledEvent{
		ReportID:   report.ID,
		ReporterID: report.ReporterID,
		TargetType: string(report.TargetType),
		TargetID:   report.TargetID,
		FiledAt:    report.CreatedAt,
	}); err != nil {
		s.log.Warn("publish report filed event failed", zap.Error(err))
	}

	return &report, nil
}

// ListByTarget returns reports filed against one user or product. Admin use.
func (s *ReportService) ListByTarget(ctx context.Context, targetType domain.ReportTargetType, targetID string, page port.Page) ([]domain.Report, int, error) {
	return s.reports.ListByTarget(ctx, targetType, targetID, page)
}

// ListByReporter returns the caller's own reports.
func (s *ReportService) ListByReporter(ctx context.Context, reporterID string, page port.Page) ([]domain.Report, int, error) {
	return s.reports.ListByReporter(ctx, reporterID, page)
}
