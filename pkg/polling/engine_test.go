package polling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mtx      sync.Mutex
	records  []map[string]any
	requests []PageRequest
	err      error

	histories    map[string][]PropertyHistoryRecord
	historyCalls [][]string
	historyErr   error
}

func newRecord(id string, ts int64) map[string]any {
	return map[string]any{"id": id, "ts": ts}
}

// FetchPage pages through the records with ts >= Since. The inclusive bound
// is deliberate: the engine must not rely on the vendor being exact.
func (s *fakeSource) FetchPage(ctx context.Context, req PageRequest) (Page, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.requests = append(s.requests, req)

	if s.err != nil {
		return Page{}, s.err
	}

	matching := []map[string]any{}
	for _, record := range s.records {
		if record["ts"].(int64) >= req.Since {
			matching = append(matching, record)
		}
	}

	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i]["ts"].(int64) > matching[j]["ts"].(int64)
	})

	start := 0
	if req.After != "" {
		start, _ = strconv.Atoi(req.After)
	}

	end := start + req.Limit
	if end > len(matching) {
		end = len(matching)
	}

	page := Page{Records: matching[start:end]}
	if end < len(matching) {
		page.NextCursor = strconv.Itoa(end)
	}

	return page, nil
}

func (s *fakeSource) Timestamp(record map[string]any) (int64, bool) {
	ts, ok := record["ts"].(int64)
	return ts, ok
}

func (s *fakeSource) RecordID(record map[string]any) (string, bool) {
	id, ok := record["id"].(string)
	return id, ok
}

func (s *fakeSource) FetchHistory(ctx context.Context, ids []string) ([]ObjectHistory, error) {
	s.mtx.Lock()
	s.historyCalls = append(s.historyCalls, append([]string(nil), ids...))
	s.mtx.Unlock()

	if s.historyErr != nil {
		return nil, s.historyErr
	}

	histories := make([]ObjectHistory, 0, len(ids))
	for _, id := range ids {
		histories = append(histories, ObjectHistory{
			ID:      id,
			Object:  map[string]any{"id": id},
			History: s.histories[id],
		})
	}

	return histories, nil
}

func newTestEngine() *Engine {
	return NewEngine(domain.PollingConfig{LivePageSize: 3})
}

func timestamps(items []domain.PollItem) []int64 {
	result := make([]int64, 0, len(items))
	for _, item := range items {
		result = append(result, item.EpochMilliseconds)
	}
	return result
}

func TestNewEngine_Defaults(t *testing.T) {
	engine := NewEngine(domain.PollingConfig{})

	assert.Equal(t, DefaultTestPageSize, engine.TestPageSize)
	assert.Equal(t, DefaultLivePageSize, engine.LivePageSize)
	assert.Equal(t, DefaultHistoryBatchSize, engine.HistoryBatchSize)
	assert.Equal(t, DefaultMaxHistoryWorkers, engine.MaxHistoryWorkers)
}

func TestEngine_Poll_TestModeIssuesSingleRequest(t *testing.T) {
	src := &fakeSource{}
	for i := 1; i <= 25; i++ {
		src.records = append(src.records, newRecord(fmt.Sprintf("r%d", i), int64(1000+i)))
	}

	items, err := newTestEngine().Poll(context.Background(), src, 0)
	require.NoError(t, err)

	require.Len(t, src.requests, 1)
	assert.Equal(t, PageRequest{Limit: 10}, src.requests[0])
	assert.True(t, src.requests[0].IsTest())
	assert.LessOrEqual(t, len(items), 10)
	assert.Equal(t, int64(1025), items[0].EpochMilliseconds)
}

func TestEngine_Poll_LiveFollowsCursorsUntilExhausted(t *testing.T) {
	src := &fakeSource{}
	for i := 1; i <= 8; i++ {
		src.records = append(src.records, newRecord(fmt.Sprintf("r%d", i), int64(2000+i)))
	}

	items, err := newTestEngine().Poll(context.Background(), src, 2000)
	require.NoError(t, err)

	require.Len(t, src.requests, 3)
	assert.Equal(t, "", src.requests[0].After)
	assert.Equal(t, "3", src.requests[1].After)
	assert.Equal(t, "6", src.requests[2].After)

	for _, req := range src.requests {
		assert.Equal(t, int64(2000), req.Since)
		assert.Equal(t, 3, req.Limit)
	}

	assert.Equal(t, []int64{2008, 2007, 2006, 2005, 2004, 2003, 2002, 2001}, timestamps(items))
}

func TestEngine_Poll_ExclusiveLowerBound(t *testing.T) {
	const watermark int64 = 1700000000000

	src := &fakeSource{
		records: []map[string]any{
			newRecord("a", watermark+1),
			newRecord("b", watermark+2),
			newRecord("c", watermark),
		},
	}

	items, err := newTestEngine().Poll(context.Background(), src, watermark)
	require.NoError(t, err)

	assert.Equal(t, []int64{watermark + 2, watermark + 1}, timestamps(items))
	assert.Equal(t, "b", items[0].Data["id"])
	assert.Equal(t, "a", items[1].Data["id"])

	for _, item := range items {
		assert.Greater(t, item.EpochMilliseconds, watermark)
	}
}

func TestEngine_Poll_RepollIsIdempotent(t *testing.T) {
	src := &fakeSource{
		records: []map[string]any{
			newRecord("a", 5001),
			newRecord("b", 5002),
			newRecord("c", 5003),
			newRecord("d", 5004),
		},
	}
	engine := newTestEngine()

	first, err := engine.Poll(context.Background(), src, 5000)
	require.NoError(t, err)
	require.Len(t, first, 4)

	next := NextWatermark(5000, first)
	assert.Equal(t, int64(5004), next)

	second, err := engine.Poll(context.Background(), src, next)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestEngine_Poll_PropagatesSourceErrors(t *testing.T) {
	sourceErr := errors.New("status 502")
	src := &fakeSource{err: sourceErr}

	_, err := newTestEngine().Poll(context.Background(), src, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, sourceErr)

	_, err = newTestEngine().Poll(context.Background(), src, 0)
	assert.ErrorIs(t, err, sourceErr)
}

type loopingSource struct {
	calls int
}

func (s *loopingSource) FetchPage(ctx context.Context, req PageRequest) (Page, error) {
	s.calls++
	return Page{
		Records:    []map[string]any{newRecord(fmt.Sprintf("r%d", s.calls), int64(100+s.calls))},
		NextCursor: "same",
	}, nil
}

func (s *loopingSource) Timestamp(record map[string]any) (int64, bool) {
	ts, ok := record["ts"].(int64)
	return ts, ok
}

func TestEngine_Poll_StopsOnRepeatedCursor(t *testing.T) {
	src := &loopingSource{}

	items, err := newTestEngine().Poll(context.Background(), src, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, src.calls)
	assert.Len(t, items, 2)
}

func TestEngine_Poll_SkipsUnreadableTimestamps(t *testing.T) {
	src := &fakeSource{
		records: []map[string]any{
			newRecord("a", 10),
			newRecord("broken", 20),
		},
	}

	items, err := newTestEngine().Poll(context.Background(), &timestampless{src: src, broken: "broken"}, 0)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Data["id"])
}

type timestampless struct {
	src    *fakeSource
	broken string
}

func (s *timestampless) FetchPage(ctx context.Context, req PageRequest) (Page, error) {
	return s.src.FetchPage(ctx, req)
}

func (s *timestampless) Timestamp(record map[string]any) (int64, bool) {
	if record["id"] == s.broken {
		return 0, false
	}
	return s.src.Timestamp(record)
}

func TestEngine_Poll_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine().Poll(ctx, &fakeSource{}, 10)
	assert.ErrorIs(t, err, context.Canceled)
}
