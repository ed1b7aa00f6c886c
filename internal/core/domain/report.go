package domain

import (
	"strings"
	"time"
)

// ReportTargetType names the kind of entity a report is filed against.
type ReportTargetType string

const (
	ReportTargetUser    ReportTargetType = "User"
	ReportTargetProduct ReportTargetType = "Product"
)

// ParseReportTargetType maps textual input onto a known target type; the
// second result is false for unrecognised values.
func ParseReportTargetType(value string) (ReportTargetType, bool) {
	switch strings.TrimSpace(value) {
	case string(ReportTargetUser):
		return ReportTargetUser, true
	case string(ReportTargetProduct):
		return ReportTargetProduct, true
	default:
		return "", false
	}
}

// Report is a user complaint about another user or a listing.
type Report struct {
	ID         string
	ReporterID string
	TargetType ReportTargetType
	TargetID   string
	Reason     string

	CreatedAt time.Time
}
