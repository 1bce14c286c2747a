package aggregator

import (
	"cmp"
	"slices"

	"nathanbeddoewebdev/chainwatch/internal/domain"
	"nathanbeddoewebdev/chainwatch/internal/history"
)

// blockTable keeps the most recent blocks, one row per block number.
type blockTable struct {
	rows *history.Buffer[domain.BlockEvent]
}

func newBlockTable(capacity int) *blockTable {
	return &blockTable{rows: history.New[domain.BlockEvent](capacity)}
}

// upsert stores ev. A number already present is overwritten in place with
// the newer fields; it does not move or evict anything. When the table is
// full the lowest number gives way, and ev is dropped if it is lower than
// every stored row. It reports whether a new row was added.
func (t *blockTable) upsert(ev domain.BlockEvent) bool {
	i := t.rows.IndexFunc(func(b domain.BlockEvent) bool { return b.Number == ev.Number })
	if i >= 0 {
		t.rows.Set(i, ev)
		return false
	}
	if t.rows.Len() < t.rows.Cap() {
		t.rows.Push(ev)
		return true
	}

	lowest := t.lowest()
	low, _ := t.rows.At(lowest)
	if ev.Number < low.Number {
		return false
	}
	t.rows.Set(lowest, ev)
	return true
}

// lowest returns the position of the row with the smallest number. The
// table must not be empty.
func (t *blockTable) lowest() int {
	idx := 0
	low, _ := t.rows.At(0)
	for i := 1; i < t.rows.Len(); i++ {
		b, _ := t.rows.At(i)
		if b.Number < low.Number {
			idx, low = i, b
		}
	}
	return idx
}

// sorted returns a copy of the rows ordered by number, highest first.
func (t *blockTable) sorted() []domain.BlockEvent {
	rows := t.rows.Values()
	slices.SortStableFunc(rows, func(a, b domain.BlockEvent) int {
		return cmp.Compare(b.Number, a.Number)
	})
	return rows
}
