package middleware

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bryanwahyu/medreport-ai/internal/domain/reports"
)

// Input validation and sanitization utilities

// ValidationError marks rejected request input. The router maps it onto a
// 400-class response instead of the generic 500 envelope.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// ValidationErrorf builds a ValidationError from a format string.
func ValidationErrorf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

var cardNoPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateCardNo validates patient card number format
func ValidateCardNo(cardNo string) error {
	if cardNo == "" {
		return ValidationErrorf("cardNo cannot be empty")
	}
	if !cardNoPattern.MatchString(cardNo) {
		return ValidationErrorf("invalid cardNo format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateReportType checks the category against the supported set
func ValidateReportType(t string) error {
	if !reports.ReportType(t).Valid() {
		return ValidationErrorf("invalid report type: %s (allowed: routine_lab, microbiology, examination, pathology)", t)
	}
	return nil
}

// ValidateComparisonPeriod reports whether the raw period string is one of
// the recognized windows; unknown values are tolerated downstream (they fall
// back to the default window) so this is advisory.
func ValidateComparisonPeriod(period string) bool {
	switch reports.Window(period) {
	case reports.WindowOneMonth, reports.WindowThreeMonths, reports.WindowSixMonths,
		reports.WindowOneYear, reports.WindowAll:
		return true
	}
	return false
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 10 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateOffset validates pagination offset
func ValidateOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
