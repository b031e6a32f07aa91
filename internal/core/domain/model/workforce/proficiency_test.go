package workforce_test

import (
	"testing"

	"fieldservice/internal/core/domain/model/workforce"
	"fieldservice/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProficiencyLevel(t *testing.T) {
	testCases := []struct {
		level      workforce.ProficiencyLevel
		wire       string
		display    string
		multiplier float64
	}{
		{workforce.Beginner, "beginner", "Beginner", 0.6},
		{workforce.Intermediate, "intermediate", "Intermediate", 0.75},
		{workforce.Advanced, "advanced", "Advanced", 0.9},
		{workforce.Expert, "expert", "Expert", 1.0},
		{workforce.Master, "master", "Master", 1.1},
	}

	for _, tc := range testCases {
		t.Run("should describe "+tc.wire, func(t *testing.T) {
			require.NoError(t, tc.level.Validate())
			assert.Equal(t, tc.wire, tc.level.String())
			assert.Equal(t, tc.display, tc.level.DisplayName())
			assert.InDelta(t, tc.multiplier, tc.level.Multiplier(), 1e-9)

			parsed, err := workforce.ParseProficiencyLevel(tc.display)
			require.NoError(t, err)
			assert.Equal(t, tc.level, parsed)
		})
	}

	t.Run("should reject unknown levels", func(t *testing.T) {
		_, err := workforce.ParseProficiencyLevel("guru")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		require.Error(t, workforce.ProficiencyUnknown.Validate())
		assert.Zero(t, workforce.ProficiencyLevel(9).Multiplier())
	})
}

func TestAvailabilityType(t *testing.T) {
	t.Run("should round trip wire values", func(t *testing.T) {
		for _, kind := range []workforce.AvailabilityType{
			workforce.Regular, workforce.Overtime, workforce.OnCall, workforce.Unavailable,
		} {
			parsed, err := workforce.ParseAvailabilityType(kind.String())

			require.NoError(t, err)
			assert.Equal(t, kind, parsed)
		}
	})

	t.Run("should expose display names", func(t *testing.T) {
		assert.Equal(t, "On Call", workforce.OnCall.DisplayName())
		assert.Equal(t, "Regular Hours", workforce.Regular.DisplayName())
		assert.Equal(t, "Unknown", workforce.AvailabilityUnknown.DisplayName())
	})

	t.Run("should reject unknown type", func(t *testing.T) {
		_, err := workforce.ParseAvailabilityType("holiday")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}
