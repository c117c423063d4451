package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWindow(t *testing.T) {
	assert.Equal(t, WindowOneMonth, ParseWindow("1month"))
	assert.Equal(t, WindowAll, ParseWindow("all"))
	assert.Equal(t, DefaultWindow, ParseWindow(""))
	assert.Equal(t, DefaultWindow, ParseWindow("2weeks"))
}

func TestWindowCutoff(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, -30), WindowOneMonth.Cutoff(now))
	assert.Equal(t, now.AddDate(0, 0, -90), WindowThreeMonths.Cutoff(now))
	assert.Equal(t, now.AddDate(0, 0, -180), WindowSixMonths.Cutoff(now))
	assert.Equal(t, now.AddDate(0, 0, -365), WindowOneYear.Cutoff(now))
	assert.Equal(t, time.Unix(0, 0).UTC(), WindowAll.Cutoff(now))
}
