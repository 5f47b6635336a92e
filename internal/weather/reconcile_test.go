package weather

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func forecastSamples(days int, mutate func(i int, p *ForecastPoint)) []Sample[ForecastPoint] {
	var out []Sample[ForecastPoint]
	for i := 0; i < days*8; i++ {
		p := ForecastPoint{TempC: 10 + float64(i), WindSpeedMS: 3, Condition: ConditionClear}
		if mutate != nil {
			mutate(i, &p)
		}
		out = append(out, Sample[ForecastPoint]{Epoch: at(i * 3), Payload: p})
	}
	return out
}

func TestReconcileAttachesAnnotationsByDate(t *testing.T) {
	primary := BucketByDay(forecastSamples(3, nil), 0, 3)
	uv := ReduceUV(uvSamples(12, 2, 36, 9), 0)
	air := ReduceAQI(airSamples(0, 1, 50, 5), 0)

	days := Reconcile(primary,
		Secondary{Kind: AnnotationUV, ByDate: uv},
		Secondary{Kind: AnnotationAirQuality, ByDate: air},
	)

	require.Len(t, days, 3)
	for i, d := range days {
		require.Equal(t, primary[i].Date, d.Date)
		require.Equal(t, primary[i].Representative, d.Representative)
	}

	a, ok := days[0].Annotation(AnnotationUV)
	require.True(t, ok)
	require.Equal(t, "Low", a.Category)
	a, ok = days[1].Annotation(AnnotationUV)
	require.True(t, ok)
	require.Equal(t, "Very High", a.Category)
	_, ok = days[2].Annotation(AnnotationUV)
	require.False(t, ok)

	_, ok = days[1].Annotation(AnnotationAirQuality)
	require.False(t, ok)
	a, ok = days[2].Annotation(AnnotationAirQuality)
	require.True(t, ok)
	require.Equal(t, "Very Poor", a.Category)
}

func TestReconcileWithEmptySecondary(t *testing.T) {
	primary := BucketByDay(forecastSamples(2, nil), 0, 3)

	days := Reconcile(primary, Secondary{Kind: AnnotationUV, ByDate: ReduceUV(nil, 0)})

	require.Len(t, days, 2)
	for _, d := range days {
		require.Empty(t, d.Annotations)
	}
}

func TestReconcileEmptyPrimary(t *testing.T) {
	days := Reconcile(nil, Secondary{Kind: AnnotationUV, ByDate: ReduceUV(uvSamples(12, 3), 0)})
	require.Empty(t, days)
}

func TestWindByDateUsesRepresentative(t *testing.T) {
	primary := BucketByDay(forecastSamples(1, func(i int, p *ForecastPoint) {
		if i == 4 {
			p.WindSpeedMS = 15
		}
	}), 0, 1)

	got := windByDate(primary)
	require.Equal(t, "High wind", got["2023-11-15"].Category)
	require.Equal(t, "Challenging for cycling and some outdoor activities.", got["2023-11-15"].Advice)
}
