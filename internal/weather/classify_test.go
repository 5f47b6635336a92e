package weather

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyUVBands(t *testing.T) {
	cases := map[float64]string{
		0:     "Low",
		2.99:  "Low",
		3:     "Moderate",
		5.9:   "Moderate",
		6:     "High",
		8:     "Very High",
		10.99: "Very High",
		11:    "Extreme",
		14:    "Extreme",
		-1:    "Low",
	}
	for v, want := range cases {
		require.Equal(t, want, ClassifyUV(v).Category, "uv %v", v)
		require.NotEmpty(t, ClassifyUV(v).Advice)
	}
	require.Equal(t, "Low", ClassifyUV(math.NaN()).Category)
}

func TestClassifyAQI(t *testing.T) {
	want := []string{"Good", "Fair", "Moderate", "Poor", "Very Poor"}
	for i, cat := range want {
		require.Equal(t, cat, ClassifyAQI(i+1).Category)
	}

	for _, v := range []int{0, 6, -3} {
		a := ClassifyAQI(v)
		require.Equal(t, "Unknown", a.Category)
		require.Equal(t, "Health implications unknown.", a.Advice)
	}
}

func TestDescribeWind(t *testing.T) {
	require.Equal(t, "Calm", DescribeWind(0))
	require.Equal(t, "Light air", DescribeWind(0.5))
	require.Equal(t, "Gentle breeze", DescribeWind(5))
	require.Equal(t, "Gale", DescribeWind(18))
	require.Equal(t, "Hurricane force", DescribeWind(40))
	require.Equal(t, "Perfect for most outdoor activities.", WindRecommendation(2))
	require.Equal(t, "Dangerous conditions - stay indoors.", WindRecommendation(30))
}

func TestCompassPoint(t *testing.T) {
	cases := map[float64]string{
		0:      "North",
		11.24:  "North",
		11.26:  "North-Northeast",
		90:     "East",
		240:    "West-Southwest",
		348.75: "North",
		360:    "North",
		-90:    "West",
		450:    "East",
	}
	for deg, want := range cases {
		require.Equal(t, want, CompassPoint(deg), "bearing %v", deg)
	}
	require.Equal(t, "North", CompassPoint(math.NaN()))
}

func TestPrecipitationOutlook(t *testing.T) {
	require.Equal(t, "Prepare for wet conditions", PrecipitationOutlook(0.8))
	require.Equal(t, "Some precipitation possible", PrecipitationOutlook(0.3))
	require.Equal(t, "No significant precipitation expected", PrecipitationOutlook(0.2))
}

func TestSeasonalComparisonAndTrend(t *testing.T) {
	require.Equal(t, "about average", SeasonalComparison(23))
	require.Equal(t, "warmer", SeasonalComparison(24))
	require.Equal(t, "much warmer", SeasonalComparison(30))
	require.Equal(t, "colder", SeasonalComparison(18))
	require.Equal(t, "much colder", SeasonalComparison(10))

	require.Equal(t, "about the same", TemperatureTrend(0.5))
	require.Equal(t, "warmer", TemperatureTrend(3))
	require.Equal(t, "cooler", TemperatureTrend(-3))
}
