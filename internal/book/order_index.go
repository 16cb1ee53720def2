package book

import (
	"github.com/google/uuid"

	"github.com/saiputravu/flob/internal/common"
)

// IndexEntry locates a resting order within its Price Level.
type IndexEntry struct {
	Side   common.Side
	Price  int64
	Handle Handle
	Token  uuid.UUID
}

// OrderIndex maps a caller-assigned UID to the location of its resting
// order. An entry exists iff the order is currently live and resting on the
// book.
type OrderIndex struct {
	byUID map[uint64]*IndexEntry
}

func NewOrderIndex() *OrderIndex {
	return &OrderIndex{byUID: make(map[uint64]*IndexEntry)}
}

func (idx *OrderIndex) Put(uid uint64, entry *IndexEntry) {
	idx.byUID[uid] = entry
}

func (idx *OrderIndex) Get(uid uint64) (*IndexEntry, bool) {
	e, ok := idx.byUID[uid]
	return e, ok
}

func (idx *OrderIndex) Delete(uid uint64) {
	delete(idx.byUID, uid)
}

func (idx *OrderIndex) Len() int {
	return len(idx.byUID)
}
