package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"every hour", "0 * * * *"},
		{"every 5 minutes", "*/5 * * * *"},
		{"weekday business hours", "0 9-17 * * 1-5"},
		{"daily 2:30am", "30 2 * * *"},
		{"named weekday", "0 8 * * MON"},
		{"every minute", "* * * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched, err := Parse(tt.expr, "UTC")
			require.NoError(t, err)
			assert.NotNil(t, sched)
		})
	}
}

func TestParse_InvalidExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"four fields", "* * * *"},
		{"six fields", "* * * * * *"},
		{"invalid minute 60", "60 * * * *"},
		{"invalid hour 25", "0 25 * * *"},
		{"non-numeric", "abc * * * *"},
		{"descriptor", "@daily"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.expr, "UTC")
			assert.Error(t, err)
		})
	}
}

func TestParse_Timezones(t *testing.T) {
	sched, err := Parse("0 * * * *", "")
	require.NoError(t, err)
	assert.Equal(t, "UTC", sched.Location().String())

	_, err = Parse("0 * * * *", "Invalid/Zone")
	assert.Error(t, err)
}

func TestNext_EvaluatesInScheduleZone(t *testing.T) {
	sched, err := Parse("30 23 * * *", "Asia/Tokyo")
	require.NoError(t, err)

	next := sched.Next(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "Asia/Tokyo", next.Location().String())
	assert.Equal(t, time.Date(2025, 1, 6, 14, 30, 0, 0, time.UTC), next.UTC())
}

func TestNext_StrictlyAfter(t *testing.T) {
	sched, err := Parse("0 10 * * *", "UTC")
	require.NoError(t, err)

	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC), sched.Next(at))
}

func TestNext_ImpossibleDateIsZero(t *testing.T) {
	sched, err := Parse("0 0 30 2 *", "UTC")
	require.NoError(t, err)
	assert.True(t, sched.Next(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).IsZero())
}
