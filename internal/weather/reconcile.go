package weather

// Secondary is a reduced secondary series keyed by local date.
type Secondary struct {
	Kind   AnnotationKind
	ByDate map[Date]Annotation
}

// Reconcile attaches secondary annotations to the primary forecast days by date.
// It never drops or reorders a primary bucket; dates missing from a secondary
// series simply leave that annotation unset.
func Reconcile(primary []DayBucket[ForecastPoint], secondary ...Secondary) []EnrichedDay {
	days := make([]EnrichedDay, 0, len(primary))
	for _, b := range primary {
		day := EnrichedDay{
			Date:           b.Date,
			Representative: b.Representative,
			Members:        b.Members,
		}
		for _, s := range secondary {
			a, ok := s.ByDate[b.Date]
			if !ok {
				continue
			}
			if day.Annotations == nil {
				day.Annotations = make(map[AnnotationKind]Annotation, len(secondary))
			}
			day.Annotations[s.Kind] = a
		}
		days = append(days, day)
	}
	return days
}
