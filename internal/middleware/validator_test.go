package middleware

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorsAreTyped(t *testing.T) {
	var verr *ValidationError

	assert.True(t, errors.As(ValidateCardNo(""), &verr))
	assert.True(t, errors.As(ValidateCardNo("bad card;"), &verr))
	assert.True(t, errors.As(ValidateReportType("bogus"), &verr))
	assert.True(t, errors.As(ValidationErrorf("currentReportId must be a positive integer"), &verr))
}

func TestValidateCardNo(t *testing.T) {
	assert.NoError(t, ValidateCardNo("CARD001"))
	assert.NoError(t, ValidateCardNo("abc-123_XYZ"))

	assert.Error(t, ValidateCardNo(""))
	assert.Error(t, ValidateCardNo("card no"))
	assert.Error(t, ValidateCardNo("card;DROP TABLE"))
	assert.Error(t, ValidateCardNo(strings.Repeat("a", 65)))

	assert.NoError(t, ValidateCardNo(strings.Repeat("a", 64)))
}

func TestValidateReportType(t *testing.T) {
	for _, valid := range []string{"routine_lab", "microbiology", "examination", "pathology"} {
		assert.NoError(t, ValidateReportType(valid), valid)
	}
	assert.Error(t, ValidateReportType("imaging"))
	assert.Error(t, ValidateReportType(""))
	assert.Error(t, ValidateReportType("ROUTINE_LAB"))
}

func TestValidateComparisonPeriod(t *testing.T) {
	for _, valid := range []string{"1month", "3months", "6months", "1year", "all"} {
		assert.True(t, ValidateComparisonPeriod(valid), valid)
	}
	assert.False(t, ValidateComparisonPeriod("2weeks"))
	assert.False(t, ValidateComparisonPeriod(""))
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 10, ValidateLimit(0))
	assert.Equal(t, 10, ValidateLimit(-5))
	assert.Equal(t, 1, ValidateLimit(1))
	assert.Equal(t, 100, ValidateLimit(100))
	assert.Equal(t, 100, ValidateLimit(150))
}

func TestValidateOffset(t *testing.T) {
	assert.Equal(t, 0, ValidateOffset(0))
	assert.Equal(t, 0, ValidateOffset(-1))
	assert.Equal(t, 25, ValidateOffset(25))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("hello\x00"))
	assert.Equal(t, "ab", SanitizeString("a\x01\x02b"))
	assert.Equal(t, "line1\nline2", SanitizeString("line1\nline2"))
	assert.Equal(t, "trimmed", SanitizeString("  trimmed  "))
	assert.Equal(t, "", SanitizeString("\x00\x1f"))
}
