package polling

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectHistory_Latest(t *testing.T) {
	tests := []struct {
		name     string
		history  []PropertyHistoryRecord
		property string
		expected int64
		found    bool
	}{
		{
			name:     "no history",
			property: "dealstage",
		},
		{
			name: "picks newest entry regardless of order",
			history: []PropertyHistoryRecord{
				{PropertyName: "dealstage", Timestamp: 10},
				{PropertyName: "dealstage", Timestamp: 30},
				{PropertyName: "dealstage", Timestamp: 20},
			},
			property: "dealstage",
			expected: 30,
			found:    true,
		},
		{
			name: "ignores other properties",
			history: []PropertyHistoryRecord{
				{PropertyName: "amount", Timestamp: 99},
				{PropertyName: "dealstage", Timestamp: 5},
			},
			property: "dealstage",
			expected: 5,
			found:    true,
		},
		{
			name: "only other properties",
			history: []PropertyHistoryRecord{
				{PropertyName: "amount", Timestamp: 99},
			},
			property: "dealstage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			latest, found := ObjectHistory{History: tt.history}.Latest(tt.property)

			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.expected, latest)
		})
	}
}

func TestEngine_PollPropertyChanges_Precision(t *testing.T) {
	const watermark int64 = 1000

	src := &fakeSource{
		records: []map[string]any{
			newRecord("changed", 1500),
			newRecord("stale", 1400),
			newRecord("nohistory", 1300),
			newRecord("boundary", 1200),
		},
		histories: map[string][]PropertyHistoryRecord{
			"changed": {
				{PropertyName: "email", Timestamp: 1100},
				{PropertyName: "email", Timestamp: 1450},
			},
			"stale": {
				{PropertyName: "email", Timestamp: 900},
			},
			"boundary": {
				{PropertyName: "email", Timestamp: watermark},
			},
		},
	}

	items, err := newTestEngine().PollPropertyChanges(context.Background(), src, "email", watermark)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, int64(1450), items[0].EpochMilliseconds)
	assert.Equal(t, map[string]any{"id": "changed"}, items[0].Data)
}

func TestEngine_PollPropertyChanges_BatchesOfFifty(t *testing.T) {
	tests := []struct {
		name            string
		candidates      int
		expectedBatches int
		lastBatchSize   int
	}{
		{name: "single partial batch", candidates: 7, expectedBatches: 1, lastBatchSize: 7},
		{name: "exactly one batch", candidates: 50, expectedBatches: 1, lastBatchSize: 50},
		{name: "one over", candidates: 51, expectedBatches: 2, lastBatchSize: 1},
		{name: "several batches", candidates: 120, expectedBatches: 3, lastBatchSize: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{histories: map[string][]PropertyHistoryRecord{}}
			for i := 0; i < tt.candidates; i++ {
				id := fmt.Sprintf("obj-%03d", i)
				src.records = append(src.records, newRecord(id, int64(5000+i)))
				src.histories[id] = []PropertyHistoryRecord{{PropertyName: "phone", Timestamp: int64(6000 + i)}}
			}

			engine := NewEngine(domain.PollingConfig{})

			items, err := engine.PollPropertyChanges(context.Background(), src, "phone", 4000)
			require.NoError(t, err)

			assert.Len(t, items, tt.candidates)
			require.Len(t, src.historyCalls, tt.expectedBatches)

			total := 0
			sizes := map[int]int{}
			for _, call := range src.historyCalls {
				assert.LessOrEqual(t, len(call), DefaultHistoryBatchSize)
				total += len(call)
				sizes[len(call)]++
			}

			assert.Equal(t, tt.candidates, total)
			assert.GreaterOrEqual(t, sizes[tt.lastBatchSize], 1)

			for i := 1; i < len(items); i++ {
				assert.GreaterOrEqual(t, items[i-1].EpochMilliseconds, items[i].EpochMilliseconds)
			}
		})
	}
}

func TestEngine_PollPropertyChanges_TestMode(t *testing.T) {
	src := &fakeSource{histories: map[string][]PropertyHistoryRecord{}}
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("c%d", i)
		src.records = append(src.records, newRecord(id, int64(100+i)))
		src.histories[id] = []PropertyHistoryRecord{{PropertyName: "lifecyclestage", Timestamp: int64(100 + i)}}
	}

	items, err := newTestEngine().PollPropertyChanges(context.Background(), src, "lifecyclestage", 0)
	require.NoError(t, err)

	require.Len(t, src.requests, 1)
	assert.Len(t, items, 10)
	require.Len(t, src.historyCalls, 1)
}

func TestEngine_PollPropertyChanges_NoCandidates(t *testing.T) {
	src := &fakeSource{}

	items, err := newTestEngine().PollPropertyChanges(context.Background(), src, "email", 10)
	require.NoError(t, err)

	assert.Empty(t, items)
	assert.Empty(t, src.historyCalls)
}

func TestEngine_PollPropertyChanges_HistoryError(t *testing.T) {
	historyErr := errors.New("status 429")
	src := &fakeSource{
		records:    []map[string]any{newRecord("a", 20)},
		historyErr: historyErr,
	}

	_, err := newTestEngine().PollPropertyChanges(context.Background(), src, "email", 10)
	assert.ErrorIs(t, err, historyErr)
}
