package polling

import (
	"context"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type PropertyHistoryRecord struct {
	PropertyName string
	Timestamp    int64
}

// ObjectHistory is one object returned by a history lookup. Object holds the
// record as it should be emitted, without any history payload.
type ObjectHistory struct {
	ID      string
	Object  map[string]any
	History []PropertyHistoryRecord
}

// Latest returns the newest history timestamp recorded for property.
func (h ObjectHistory) Latest(property string) (int64, bool) {
	var (
		latest int64
		found  bool
	)

	for _, record := range h.History {
		if record.PropertyName != property {
			continue
		}

		if !found || record.Timestamp > latest {
			latest = record.Timestamp
			found = true
		}
	}

	return latest, found
}

// HistorySource is a Source whose candidates can be enriched with the change
// history of one property. FetchHistory is called with at most
// Engine.HistoryBatchSize ids.
type HistorySource interface {
	Source
	RecordID(record map[string]any) (string, bool)
	FetchHistory(ctx context.Context, ids []string) ([]ObjectHistory, error)
}

// PollPropertyChanges emits the candidates of src whose property changed
// after lastFetchEpochMS, stamped with the time of that change. Candidates
// without any history for property are dropped.
func (e *Engine) PollPropertyChanges(ctx context.Context, src HistorySource, property string, lastFetchEpochMS int64) ([]domain.PollItem, error) {
	candidates, err := e.collect(ctx, src, lastFetchEpochMS)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))

	for _, candidate := range candidates {
		id, ok := src.RecordID(candidate)
		if !ok {
			continue
		}

		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return []domain.PollItem{}, nil
	}

	histories, err := e.fetchHistories(ctx, src, ids)
	if err != nil {
		return nil, err
	}

	items := make([]domain.PollItem, 0, len(histories))

	for _, history := range histories {
		changedAt, ok := history.Latest(property)
		if !ok {
			log.Debug().
				Str("id", history.ID).
				Str("property", property).
				Msg("PollingEngine: No history for property, skipping")
			continue
		}

		if changedAt <= lastFetchEpochMS {
			continue
		}

		items = append(items, domain.PollItem{
			EpochMilliseconds: changedAt,
			Data:              history.Object,
		})
	}

	SortDescending(items)

	return items, nil
}

func (e *Engine) fetchHistories(ctx context.Context, src HistorySource, ids []string) ([]ObjectHistory, error) {
	batches := Chunk(ids, e.HistoryBatchSize)
	results := make([][]ObjectHistory, len(batches))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.MaxHistoryWorkers)

	for i, batch := range batches {
		g.Go(func() error {
			histories, err := src.FetchHistory(groupCtx, batch)
			if err != nil {
				return err
			}

			results[i] = histories

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().
		Int("ids", len(ids)).
		Int("batches", len(batches)).
		Msg("PollingEngine: Fetched property history")

	joined := make([]ObjectHistory, 0, len(ids))
	for _, histories := range results {
		joined = append(joined, histories...)
	}

	return joined, nil
}
