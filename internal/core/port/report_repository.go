package port

import (
	"context"

	"github.com/Deaglesso/Second/internal/core/domain"
)

// ReportRepository persists abuse reports.
type ReportRepository interface {
	Create(ctx context.Context, report domain.Report) error
	ListByTarget(ctx context.Context, targetType domain.ReportTargetType, targetID string, page Page) ([]domain.Report, int, error)
	ListByReporter(ctx context.Context, reporterID string, page Page) ([]domain.Report, int, error)
}
