package polling

import (
	"context"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/rs/zerolog/log"
)

const (
	DefaultTestPageSize      = 10
	DefaultLivePageSize      = 100
	DefaultHistoryBatchSize  = 50
	DefaultMaxHistoryWorkers = 4
)

// PageRequest asks a Source for one page of records. Since is the exclusive
// lower bound on the record timestamp; zero means no time filter.
type PageRequest struct {
	Since int64
	Limit int
	After string
}

func (r PageRequest) IsTest() bool {
	return r.Since == 0
}

type Page struct {
	Records []map[string]any
	// NextCursor is empty when there are no more pages.
	NextCursor string
}

// Source is a vendor search endpoint that can be paged through in
// descending timestamp order.
type Source interface {
	FetchPage(ctx context.Context, req PageRequest) (Page, error)
	Timestamp(record map[string]any) (int64, bool)
}

// Engine turns a Source and a watermark into the list of new items.
type Engine struct {
	TestPageSize      int
	LivePageSize      int
	HistoryBatchSize  int
	MaxHistoryWorkers int
}

func NewEngine(config domain.PollingConfig) *Engine {
	engine := &Engine{
		TestPageSize:      config.TestPageSize,
		LivePageSize:      config.LivePageSize,
		HistoryBatchSize:  config.HistoryBatchSize,
		MaxHistoryWorkers: config.MaxHistoryWorkers,
	}

	if engine.TestPageSize <= 0 {
		engine.TestPageSize = DefaultTestPageSize
	}

	if engine.LivePageSize <= 0 {
		engine.LivePageSize = DefaultLivePageSize
	}

	if engine.HistoryBatchSize <= 0 {
		engine.HistoryBatchSize = DefaultHistoryBatchSize
	}

	if engine.MaxHistoryWorkers <= 0 {
		engine.MaxHistoryWorkers = DefaultMaxHistoryWorkers
	}

	return engine
}

// Poll returns the records of src newer than lastFetchEpochMS, newest first.
//
// With lastFetchEpochMS == 0 it issues exactly one request for a sample page
// without a time filter. Otherwise it follows cursors until the source is
// exhausted. Errors from the source are returned as is.
func (e *Engine) Poll(ctx context.Context, src Source, lastFetchEpochMS int64) ([]domain.PollItem, error) {
	records, err := e.collect(ctx, src, lastFetchEpochMS)
	if err != nil {
		return nil, err
	}

	items := make([]domain.PollItem, 0, len(records))

	for _, record := range records {
		epochMS, ok := src.Timestamp(record)
		if !ok {
			log.Warn().
				Interface("id", record["id"]).
				Msg("PollingEngine: Skipping record without a readable timestamp")
			continue
		}

		if lastFetchEpochMS > 0 && epochMS <= lastFetchEpochMS {
			continue
		}

		items = append(items, domain.PollItem{
			EpochMilliseconds: epochMS,
			Data:              record,
		})
	}

	SortDescending(items)

	if lastFetchEpochMS == 0 && len(items) > e.TestPageSize {
		items = items[:e.TestPageSize]
	}

	return items, nil
}

func (e *Engine) collect(ctx context.Context, src Source, since int64) ([]map[string]any, error) {
	if since == 0 {
		page, err := src.FetchPage(ctx, PageRequest{
			Limit: e.TestPageSize,
		})
		if err != nil {
			return nil, err
		}

		return page.Records, nil
	}

	records := []map[string]any{}
	seenCursors := map[string]struct{}{}
	after := ""

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := src.FetchPage(ctx, PageRequest{
			Since: since,
			Limit: e.LivePageSize,
			After: after,
		})
		if err != nil {
			return nil, err
		}

		records = append(records, page.Records...)

		if page.NextCursor == "" {
			break
		}

		if _, seen := seenCursors[page.NextCursor]; seen {
			log.Warn().
				Str("cursor", page.NextCursor).
				Msg("PollingEngine: Cursor repeated, stopping pagination")
			break
		}

		seenCursors[page.NextCursor] = struct{}{}
		after = page.NextCursor
	}

	log.Debug().
		Int64("since", since).
		Int("records", len(records)).
		Int("pages", len(seenCursors)+1).
		Msg("PollingEngine: Collected records")

	return records, nil
}
