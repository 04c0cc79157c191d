package lending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.March, 10, 15, 4, 5, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCheckRenewalDate(t *testing.T) {
	tests := []struct {
		name    string
		renewal time.Time
		wantErr error
	}{
		{"yesterday", date(2026, time.March, 9), ErrRenewalInPast},
		{"today", date(2026, time.March, 10), nil},
		{"three weeks out", date(2026, time.March, 31), nil},
		{"four weeks out", date(2026, time.April, 7), nil},
		{"four weeks and a day", date(2026, time.April, 8), ErrRenewalTooFar},
		{"far future", date(2027, time.January, 1), ErrRenewalTooFar},
		{"long past", date(2020, time.June, 1), ErrRenewalInPast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRenewalDate(now, tt.renewal)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCheckRenewalDate_IgnoresTimeOfDay(t *testing.T) {
	// A renewal earlier the same day is not "in the past".
	earlier := time.Date(2026, time.March, 10, 0, 30, 0, 0, time.UTC)
	assert.NoError(t, CheckRenewalDate(now, earlier))
}

func TestProposedDueDate(t *testing.T) {
	got := ProposedDueDate(now)
	assert.Equal(t, date(2026, time.March, 31), got)
}

func TestCheckDueBack_AllowsPastDates(t *testing.T) {
	assert.NoError(t, CheckDueBack(now, date(2025, time.December, 1)))
	assert.ErrorIs(t, CheckDueBack(now, date(2026, time.May, 1)), ErrRenewalTooFar)
}

func TestCheckLifespan(t *testing.T) {
	birth := date(1950, time.January, 1)
	death := date(1940, time.January, 1)
	laterDeath := date(1960, time.January, 1)

	require.ErrorIs(t, CheckLifespan(&birth, &death), ErrDeathBeforeBirth)
	require.NoError(t, CheckLifespan(&birth, &laterDeath))
	require.NoError(t, CheckLifespan(&birth, &birth), "same-day death is allowed")
	require.NoError(t, CheckLifespan(nil, &death))
	require.NoError(t, CheckLifespan(&birth, nil))
	require.NoError(t, CheckLifespan(nil, nil))
}
