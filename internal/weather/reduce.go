package weather

// ReduceCategorical collapses a series to one annotation per local date using the
// most frequent category in that date. Ties go to the category with the highest
// severity; severity returns 0 for codes outside the scale.
func ReduceCategorical[T any](samples []Sample[T], utcOffsetSeconds int, category func(T) int, severity func(int) int, classify func(int) Annotation) map[Date]Annotation {
	out := make(map[Date]Annotation)
	for _, b := range groupByDay(samples, utcOffsetSeconds) {
		counts := make(map[int]int)
		for _, m := range b.Members {
			counts[category(m.Payload)]++
		}

		best, bestCount, bestRank := 0, 0, -1
		for c, n := range counts {
			r := severity(c)
			if n > bestCount || (n == bestCount && (r > bestRank || (r == bestRank && c > best))) {
				best, bestCount, bestRank = c, n, r
			}
		}
		out[b.Date] = classify(best)
	}
	return out
}

// ReduceContinuous collapses a series to one annotation per local date using the
// value of the date's representative sample (noon window, else first sample).
func ReduceContinuous[T any](samples []Sample[T], utcOffsetSeconds int, value func(T) float64, classify func(float64) Annotation) map[Date]Annotation {
	out := make(map[Date]Annotation)
	for _, b := range groupByDay(samples, utcOffsetSeconds) {
		out[b.Date] = classify(value(b.Representative.Payload))
	}
	return out
}

// ReduceAQI is ReduceCategorical for air quality series.
func ReduceAQI(samples []Sample[AirReading], utcOffsetSeconds int) map[Date]Annotation {
	return ReduceCategorical(samples, utcOffsetSeconds, func(r AirReading) int { return r.AQI }, aqiSeverity, ClassifyAQI)
}

// aqiSeverity ranks the 1..5 scale; any other code ranks below it.
func aqiSeverity(aqi int) int {
	if _, ok := aqiLevels[aqi]; ok {
		return aqi
	}
	return 0
}

// ReduceUV is ReduceContinuous for UV index series.
func ReduceUV(samples []Sample[UVReading], utcOffsetSeconds int) map[Date]Annotation {
	return ReduceContinuous(samples, utcOffsetSeconds, func(r UVReading) float64 { return r.Value }, ClassifyUV)
}

// windByDate annotates each forecast bucket with the wind of its representative sample.
func windByDate(buckets []DayBucket[ForecastPoint]) map[Date]Annotation {
	out := make(map[Date]Annotation, len(buckets))
	for _, b := range buckets {
		out[b.Date] = ClassifyWind(b.Representative.Payload.WindSpeedMS)
	}
	return out
}
