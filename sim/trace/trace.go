package trace

// Log is an append-only, time-ordered sequence of event records.
// Records are appended by the engine in processing order, so times are
// non-decreasing and equal times appear in scheduling order.
type Log struct {
	records []Record
}

// NewLog creates an empty Log with room for sizeHint records.
func NewLog(sizeHint int) *Log {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Log{records: make([]Record, 0, sizeHint)}
}

// Append adds a record to the end of the log.
// Panics if the record would break time ordering.
func (l *Log) Append(r Record) {
	if n := len(l.records); n > 0 && r.Time < l.records[n-1].Time {
		panic("trace: record appended out of time order")
	}
	l.records = append(l.records, r)
}

// Len returns the number of records.
func (l *Log) Len() int {
	return len(l.records)
}

// Records returns a copy of the records.
func (l *Log) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}
