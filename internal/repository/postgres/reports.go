package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
)

// ReportRepository implements port.ReportRepository using PostgreSQL.
type ReportRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewReportRepository wires a PostgreSQL-backed report repository.
func NewReportRepository(exec pgExecutor) *ReportRepository {
	return &ReportRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts an abuse report.
func (r *ReportRepository) Create(ctx context.Context, report domain.Report) error {
	stmt, args, err := r.builder.Insert("second.reports").
		Columns("id", "reporter_id", "target_type", "target_id", "reason", "created_at").
		Values(report.ID, report.ReporterID, report.TargetType, report.TargetID, report.Reason, report.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert report sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	return nil
}

// ListByTarget returns reports filed against one user or product, newest first.
func (r *ReportRepository) ListByTarget(ctx context.Context, targetType domain.ReportTargetType, targetID string, page port.Page) ([]domain.Report, int, error) {
	where := squirrel.Eq{
		"target_type": targetType,
		"target_id":   targetID,
	}
	return r.list(ctx, where, page)
}

// ListByReporter returns reports filed by one user, newest first.
func (r *ReportRepository) ListByReporter(ctx context.Context, reporterID string, page port.Page) ([]domain.Report, int, error) {
	return r.list(ctx, squirrel.Eq{"reporter_id": reporterID}, page)
}

func (r *ReportRepository) list(ctx context.Context, where squirrel.Eq, page port.Page) ([]domain.Report, int, error) {
	query := r.builder.
		Select("id", "reporter_id", "target_type", "target_id", "reason", "created_at").
		From("second.reports").
		Where(where).
		OrderBy("created_at DESC")

	if page.Limit > 0 {
		query = query.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		query = query.Offset(uint64(page.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list reports sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := make([]domain.Report, 0)
	for rows.Next() {
		var report domain.Report
		if err := rows.Scan(
			&report.ID,
			&report.ReporterID,
			&report.TargetType,
			&report.TargetID,
			&report.Reason,
			&report.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reports: %w", err)
	}

	countStmt, countArgs, err := r.builder.
		Select("COUNT(*)").
		From("second.reports").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count reports sql: %w", err)
	}

	var total int64
	if err := r.exec.QueryRow(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("scan reports count: %w", err)
	}

	return reports, int(total), nil
}

var _ port.ReportRepository = (*ReportRepository)(nil)
