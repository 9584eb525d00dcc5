package adminauth_test

import (
	"testing"
	"time"

	adminauth "github.com/goliatone/go-admin-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsWithinThresholdPeriod(t *testing.T) {
	tests := []struct {
		name      string
		input     time.Time
		pattern   string
		expected  bool
		expectErr bool
	}{
		{"inside window", time.Now().Add(-30 * time.Minute), "1h", true, false},
		{"outside window", time.Now().Add(-90 * time.Minute), "1h", false, false},
		{"future time", time.Now().Add(time.Hour), "2h", true, false},
		{"compound pattern", time.Now().Add(-2 * time.Hour), "2h30m", true, false},
		{"bad pattern", time.Now(), "soon", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := adminauth.IsWithinThresholdPeriod(tt.input, tt.pattern)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestThresholdPeriodsAreComplementary(t *testing.T) {
	inputs := []time.Time{
		time.Now(),
		time.Now().Add(-10 * time.Minute),
		time.Now().Add(-3 * time.Hour),
	}

	for _, input := range inputs {
		within, err := adminauth.IsWithinThresholdPeriod(input, "1h")
		require.NoError(t, err)

		outside, err := adminauth.IsOutsideThresholdPeriod(input, "1h")
		require.NoError(t, err)

		assert.NotEqual(t, within, outside)
	}
}
