package repository

import (
	"sort"
	"time"

	"gorm.io/gorm"
)

// newestFirstOrder orders log tables the way newestFirst orders JSON collections.
const newestFirstOrder = "timestamp DESC, sequence DESC"

// Page holds limit/offset paging for log-style collections.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) bounds(total int) (int, int) {
	start := p.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if p.Limit > 0 && start+p.Limit < total {
		end = start + p.Limit
	}
	return start, end
}

// newestFirst sorts a copy of items by timestamp descending; ties keep insertion order reversed.
func newestFirst[T any](items []T, ts func(T) time.Time) []T {
	sorted := make([]T, len(items))
	for i := range items {
		sorted[len(items)-1-i] = items[i]
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return ts(sorted[i]).After(ts(sorted[j]))
	})
	return sorted
}

// nextSequence returns the append position for the next row of model's table.
func nextSequence(tx *gorm.DB, model interface{}) (int64, error) {
	var current int64
	if err := tx.Model(model).Select("COALESCE(MAX(sequence), 0)").Scan(&current).Error; err != nil {
		return 0, err
	}
	return current + 1, nil
}
