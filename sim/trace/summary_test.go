package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_Nil_ReturnsZeroSummary(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.TotalRecords)
	assert.Equal(t, 0, s.Dropped)
	assert.NotNil(t, s.DropsByKind)
}

func TestSummarize_CountsEachKind(t *testing.T) {
	// GIVEN a log with one served and two dropped requests
	records := []Record{
		{Time: 0, Kind: KindArrival, RequestID: 1},
		{Time: 0, Kind: KindServiceStart, RequestID: 1},
		{Time: 0.1, Kind: KindArrival, RequestID: 2},
		{Time: 0.1, Kind: KindDroppedQueueFull, RequestID: 2},
		{Time: 0.2, Kind: KindArrival, RequestID: 3},
		{Time: 0.2, Kind: KindDroppedRate, RequestID: 3},
		{Time: 0.3, Kind: KindServiceEnd, RequestID: 1},
	}

	// WHEN summarized
	s := Summarize(records)

	// THEN every kind is counted once per record
	assert.Equal(t, 7, s.TotalRecords)
	assert.Equal(t, 3, s.Arrivals)
	assert.Equal(t, 1, s.Started)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 2, s.Dropped)
	assert.Equal(t, 1, s.DropsByKind[KindDroppedQueueFull])
	assert.Equal(t, 1, s.DropsByKind[KindDroppedRate])
	assert.Equal(t, 0, s.DropsByKind[KindDroppedReject])
}
