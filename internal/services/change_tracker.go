package services

import (
	"sync"

	"catalog-console/internal/ledger"
)

// Revision counts the changes seen for one product.
type Revision struct {
	Product uint64 `json:"product"`
	Images  uint64 `json:"images"`
}

// ChangeTracker turns ledger notifications into per-product revision
// counters the UI can poll to detect changes.
type ChangeTracker struct {
	mu        sync.RWMutex
	revisions map[int64]Revision
}

func NewChangeTracker(events *ledger.Events) (*ChangeTracker, error) {
	t := &ChangeTracker{revisions: make(map[int64]Revision)}
	if err := events.SubscribeProducts(t.productChanged); err != nil {
		return nil, err
	}
	if err := events.SubscribeImages(t.imagesChanged); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *ChangeTracker) Revision(productID int64) Revision {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.revisions[productID]
}

func (t *ChangeTracker) productChanged(productID int64) {
	t.mu.Lock()
	r := t.revisions[productID]
	r.Product++
	t.revisions[productID] = r
	t.mu.Unlock()
}

func (t *ChangeTracker) imagesChanged(productID int64) {
	t.mu.Lock()
	r := t.revisions[productID]
	r.Images++
	t.revisions[productID] = r
	t.mu.Unlock()
}
