package trace

// Summary aggregates counts from a slice of records.
type Summary struct {
	TotalRecords int
	Arrivals     int
	Started      int
	Completed    int
	Dropped      int
	DropsByKind  map[Kind]int
}

// Summarize computes aggregate counts from records.
// Safe for nil or empty input (returns zero-value fields).
func Summarize(records []Record) *Summary {
	summary := &Summary{
		DropsByKind: make(map[Kind]int),
	}
	summary.TotalRecords = len(records)
	for _, r := range records {
		switch {
		case r.Kind == KindArrival:
			summary.Arrivals++
		case r.Kind == KindServiceStart:
			summary.Started++
		case r.Kind == KindServiceEnd:
			summary.Completed++
		case r.Kind.IsDrop():
			summary.Dropped++
			summary.DropsByKind[r.Kind]++
		}
	}
	return summary
}
