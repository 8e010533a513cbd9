package parkmedia

import (
	"fmt"
	"strings"
	"time"
)

// ValidateID checks an identifier that is interpolated into a path.
// IDs must be non-empty and must not contain path or query delimiters.
func ValidateID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return NewValidationError(fmt.Sprintf("%s cannot be empty", kind))
	}
	if strings.ContainsAny(id, "/?#") {
		return NewValidationError(fmt.Sprintf("%s %q contains a path delimiter", kind, id))
	}
	return nil
}

// ValidateIDs checks a list of identifiers; at least one is required.
func ValidateIDs(kind string, ids []string) error {
	if len(ids) == 0 {
		return NewValidationError(fmt.Sprintf("at least one %s is required", kind))
	}
	for _, id := range ids {
		if err := ValidateID(kind, id); err != nil {
			return err
		}
		if strings.Contains(id, ",") {
			return NewValidationError(fmt.Sprintf("%s %q contains a comma", kind, id))
		}
	}
	return nil
}

// ValidateCommand checks a device command name
func ValidateCommand(command string) error {
	if strings.TrimSpace(command) == "" {
		return NewValidationError("device command cannot be empty")
	}
	return nil
}

// ValidateReportDate checks an optional YYYY-MM-DD date
func ValidateReportDate(field, date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(ReportDateLayout, date); err != nil {
		return NewValidationError(fmt.Sprintf("%s must be YYYY-MM-DD, got %q", field, date))
	}
	return nil
}

// ValidateAssetSummaryReport validates a complete report request.
// Returns a slice of validation errors (empty if valid).
func ValidateAssetSummaryReport(r *AssetSummaryReportRequest) []error {
	var errs []error

	if err := ValidateIDs("asset id", r.AssetIDs); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateReportDate("start date", r.StartDate); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateReportDate("end date", r.EndDate); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 && r.StartDate != "" && r.EndDate != "" && r.EndDate < r.StartDate {
		errs = append(errs, NewValidationError(fmt.Sprintf("end date %s is before start date %s", r.EndDate, r.StartDate)))
	}

	return errs
}
