package polling

import (
	"sort"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/spf13/cast"
)

// NextWatermark is the watermark to store after items were delivered. It
// never moves backwards.
func NextWatermark(current int64, items []domain.PollItem) int64 {
	next := current

	for _, item := range items {
		if item.EpochMilliseconds > next {
			next = item.EpochMilliseconds
		}
	}

	return next
}

// FilterNewerThan keeps the items strictly newer than watermark.
func FilterNewerThan(items []domain.PollItem, watermark int64) []domain.PollItem {
	filtered := make([]domain.PollItem, 0, len(items))

	for _, item := range items {
		if item.EpochMilliseconds > watermark {
			filtered = append(filtered, item)
		}
	}

	return filtered
}

// DedupeByID keeps the first item for each identity. Items for which idFunc
// returns "" are always kept.
func DedupeByID(items []domain.PollItem, idFunc func(domain.PollItem) string) []domain.PollItem {
	deduped := make([]domain.PollItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		id := idFunc(item)
		if id == "" {
			deduped = append(deduped, item)
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		deduped = append(deduped, item)
	}

	return deduped
}

// DataID reads the "id" field of an item's data as a string.
func DataID(item domain.PollItem) string {
	return cast.ToString(item.Data["id"])
}

func SortDescending(items []domain.PollItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].EpochMilliseconds > items[j].EpochMilliseconds
	})
}

func SortAscending(items []domain.PollItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].EpochMilliseconds < items[j].EpochMilliseconds
	})
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)

	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}

		chunks = append(chunks, items[start:end])
	}

	return chunks
}
