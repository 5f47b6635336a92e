package weather

// Local hours considered closest to solar noon when picking a day's representative sample.
const (
	noonWindowStart = 11
	noonWindowEnd   = 13
)

// BucketByDay groups samples by local calendar date and keeps the first maxDays dates.
// Buckets follow the order in which dates are first seen; members keep arrival order.
// The representative of a bucket is its first member whose local hour falls in
// [11,13], or its first member when none does.
func BucketByDay[T any](samples []Sample[T], utcOffsetSeconds, maxDays int) []DayBucket[T] {
	if maxDays <= 0 {
		return []DayBucket[T]{}
	}
	buckets := groupByDay(samples, utcOffsetSeconds)
	if len(buckets) > maxDays {
		buckets = buckets[:maxDays]
	}
	return buckets
}

// groupByDay is BucketByDay without truncation.
func groupByDay[T any](samples []Sample[T], utcOffsetSeconds int) []DayBucket[T] {
	buckets := make([]DayBucket[T], 0)
	index := make(map[Date]int)

	for _, s := range samples {
		d := LocalDate(s.Epoch, utcOffsetSeconds)
		i, ok := index[d]
		if !ok {
			i = len(buckets)
			index[d] = i
			buckets = append(buckets, DayBucket[T]{Date: d})
		}
		buckets[i].Members = append(buckets[i].Members, s)
	}

	for i := range buckets {
		buckets[i].Representative = representative(buckets[i].Members, utcOffsetSeconds)
	}
	return buckets
}

func representative[T any](members []Sample[T], utcOffsetSeconds int) Sample[T] {
	for _, m := range members {
		h := m.LocalHour(utcOffsetSeconds)
		if h >= noonWindowStart && h <= noonWindowEnd {
			return m
		}
	}
	return members[0]
}

// findBucket returns the bucket for date d, if any.
func findBucket[T any](buckets []DayBucket[T], d Date) (DayBucket[T], bool) {
	for _, b := range buckets {
		if b.Date == d {
			return b, true
		}
	}
	return DayBucket[T]{}, false
}
