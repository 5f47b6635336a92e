package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasAny(t *testing.T) {
	require.True(t, HasAny("light rain showers", "snow", "rain"))
	require.False(t, HasAny("clear sky", "rain", "snow"))
	require.False(t, HasAny("anything"))
}

func TestNormalizeLocation(t *testing.T) {
	require.Equal(t, "new york", NormalizeLocation("  New   York "))
	require.Equal(t, "", NormalizeLocation("   "))
}

func TestPeriodKeyword(t *testing.T) {
	cases := map[string]string{
		"":                 "today",
		"Today":            "today",
		"tonight":          "today",
		"tomorrow morning": "tomorrow",
		"TOMORROW":         "tomorrow",
		"next week":        "next week",
	}
	for in, want := range cases {
		require.Equal(t, want, PeriodKeyword(in), "input %q", in)
	}
}
