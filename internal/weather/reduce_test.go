package weather

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func airSamples(hoursAndAQI ...int) []Sample[AirReading] {
	out := make([]Sample[AirReading], 0, len(hoursAndAQI)/2)
	for i := 0; i+1 < len(hoursAndAQI); i += 2 {
		out = append(out, Sample[AirReading]{Epoch: at(hoursAndAQI[i]), Payload: AirReading{AQI: hoursAndAQI[i+1]}})
	}
	return out
}

func TestReduceAQIUsesMostFrequentValue(t *testing.T) {
	got := ReduceAQI(airSamples(0, 1, 1, 1, 2, 4, 24, 2), 0)

	require.Len(t, got, 2)
	require.Equal(t, "Good", got["2023-11-15"].Category)
	require.Equal(t, "Fair", got["2023-11-16"].Category)
}

func TestReduceAQITieGoesToWorst(t *testing.T) {
	got := ReduceAQI(airSamples(0, 2, 1, 3, 2, 3, 3, 2), 0)

	require.Equal(t, "Moderate", got["2023-11-15"].Category)
	require.EqualValues(t, 3, got["2023-11-15"].Value)
}

func TestReduceAQIOutOfRange(t *testing.T) {
	got := ReduceAQI(airSamples(0, 6), 0)
	require.Equal(t, "Unknown", got["2023-11-15"].Category)
}

func TestReduceAQITieIgnoresOutOfRangeCodes(t *testing.T) {
	got := ReduceAQI(airSamples(0, 5, 1, 6, 2, 7, 3, 5, 4, 6, 5, 7), 0)

	require.Equal(t, "Very Poor", got["2023-11-15"].Category)
	require.EqualValues(t, 5, got["2023-11-15"].Value)

	got = ReduceAQI(airSamples(0, 6, 1, 1), 0)
	require.Equal(t, "Good", got["2023-11-15"].Category)
}

func TestReduceUVUsesRepresentative(t *testing.T) {
	got := ReduceUV(uvSamples(9, 2, 12, 7, 15, 4, 33, 1), 0)

	require.Equal(t, "High", got["2023-11-15"].Category)
	require.InDelta(t, 7, got["2023-11-15"].Value, 1e-9)
	require.Equal(t, "Low", got["2023-11-16"].Category)
}

func TestReduceEmptySeries(t *testing.T) {
	require.Empty(t, ReduceUV(nil, 0))
	require.Empty(t, ReduceAQI(nil, 0))
}
