package ledger

import (
	"errors"
	"fmt"
	"sync"

	"catalog-console/internal/models"
)

var (
	ErrTemporaryExists = errors.New("an unsaved product already exists")
	ErrProductNotFound = errors.New("product not found")
)

// ProductLedger holds the listed products in display order and the
// in-progress draft of every product being edited.
type ProductLedger struct {
	mu       sync.RWMutex
	products map[int64]models.Product
	order    []int64
	drafts   map[int64]models.Product
	events   *Events
}

func NewProductLedger(events *Events) *ProductLedger {
	return &ProductLedger{
		products: make(map[int64]models.Product),
		drafts:   make(map[int64]models.Product),
		events:   events,
	}
}

// NewTemporary creates the defaulted, unsaved product and lists it first.
// Only one unsaved product may exist at a time.
func (l *ProductLedger) NewTemporary() (models.Product, error) {
	l.mu.Lock()
	if l.hasTemporaryLocked() {
		l.mu.Unlock()
		return models.Product{}, ErrTemporaryExists
	}
	p := models.NewProduct()
	l.products[p.ID] = p
	l.drafts[p.ID] = p.Clone()
	l.order = append([]int64{p.ID}, l.order...)
	l.mu.Unlock()

	l.events.publish(TopicProductChanged, p.ID)
	return p.Clone(), nil
}

func (l *ProductLedger) HasTemporary() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hasTemporaryLocked()
}

func (l *ProductLedger) hasTemporaryLocked() bool {
	_, listed := l.products[models.TemporaryID]
	_, drafted := l.drafts[models.TemporaryID]
	return listed || drafted
}

// Get returns the listed (last confirmed) copy of a product.
func (l *ProductLedger) Get(id int64) (models.Product, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.products[id]
	if !ok {
		return models.Product{}, false
	}
	return p.Clone(), true
}

// GetDraft returns the edit state of a product, starting one from the listed
// copy when none exists.
func (l *ProductLedger) GetDraft(id int64) (models.Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	draft, err := l.draftLocked(id)
	if err != nil {
		return models.Product{}, err
	}
	return draft.Clone(), nil
}

// SetDraft merges a field-level patch into the product's draft.
func (l *ProductLedger) SetDraft(id int64, patch models.ProductPatch) (models.Product, error) {
	l.mu.Lock()
	draft, err := l.draftLocked(id)
	if err != nil {
		l.mu.Unlock()
		return models.Product{}, err
	}
	updated := patch.Apply(draft)
	updated.ID = id
	l.drafts[id] = updated
	l.mu.Unlock()

	l.events.publish(TopicProductChanged, id)
	return updated.Clone(), nil
}

func (l *ProductLedger) draftLocked(id int64) (models.Product, error) {
	if d, ok := l.drafts[id]; ok {
		return d, nil
	}
	p, ok := l.products[id]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	d := p.Clone()
	l.drafts[id] = d
	return d, nil
}

// RebindID moves a product from oldID to newID in the list and the drafts.
func (l *ProductLedger) RebindID(oldID, newID int64) error {
	if oldID == newID {
		return nil
	}

	l.mu.Lock()
	p, listed := l.products[oldID]
	d, drafted := l.drafts[oldID]
	if !listed && !drafted {
		l.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrProductNotFound, oldID)
	}

	if listed {
		p.ID = newID
		l.products[newID] = p
		delete(l.products, oldID)
	}
	if drafted {
		d.ID = newID
		l.drafts[newID] = d
		delete(l.drafts, oldID)
	}

	order := make([]int64, 0, len(l.order))
	for _, id := range l.order {
		switch id {
		case newID:
			continue
		case oldID:
			order = append(order, newID)
		default:
			order = append(order, id)
		}
	}
	l.order = order
	l.mu.Unlock()

	l.events.publish(TopicProductChanged, oldID, newID)
	return nil
}

// ReplaceItems loads a fresh listing page. A pending unsaved product stays
// first; drafts are kept.
func (l *ProductLedger) ReplaceItems(items []models.Product) {
	l.mu.Lock()
	products := make(map[int64]models.Product, len(items)+1)
	order := make([]int64, 0, len(items)+1)
	if temp, ok := l.products[models.TemporaryID]; ok {
		products[temp.ID] = temp
		order = append(order, temp.ID)
	}
	for _, p := range items {
		if _, dup := products[p.ID]; dup {
			continue
		}
		products[p.ID] = p.Clone()
		order = append(order, p.ID)
	}
	l.products = products
	l.order = order
	ids := append([]int64(nil), order...)
	l.mu.Unlock()

	l.events.publish(TopicProductChanged, ids...)
}

// AppendItems adds the next listing page after the current items.
func (l *ProductLedger) AppendItems(items []models.Product) {
	var ids []int64

	l.mu.Lock()
	for _, p := range items {
		if _, dup := l.products[p.ID]; dup {
			continue
		}
		l.products[p.ID] = p.Clone()
		l.order = append(l.order, p.ID)
		ids = append(ids, p.ID)
	}
	l.mu.Unlock()

	l.events.publish(TopicProductChanged, ids...)
}

// Upsert stores a fetched product without touching its draft.
func (l *ProductLedger) Upsert(p models.Product) {
	l.mu.Lock()
	l.putLocked(p)
	l.mu.Unlock()

	l.events.publish(TopicProductChanged, p.ID)
}

// Confirm stores the server's copy of a saved product as both the listed
// entry and the draft.
func (l *ProductLedger) Confirm(p models.Product) {
	l.mu.Lock()
	l.putLocked(p)
	l.drafts[p.ID] = p.Clone()
	l.mu.Unlock()

	l.events.publish(TopicProductChanged, p.ID)
}

func (l *ProductLedger) putLocked(p models.Product) {
	if _, ok := l.products[p.ID]; !ok {
		l.order = append(l.order, p.ID)
	}
	l.products[p.ID] = p.Clone()
}

// Remove deletes the product from the list and drops its draft.
func (l *ProductLedger) Remove(id int64) {
	l.mu.Lock()
	delete(l.products, id)
	delete(l.drafts, id)
	for i, oid := range l.order {
		if oid == id {
			l.order = append(l.order[:i:i], l.order[i+1:]...)
			break
		}
	}
	l.mu.Unlock()

	l.events.publish(TopicProductChanged, id)
}

// Discard drops unsaved edits. An unsaved product is removed altogether.
func (l *ProductLedger) Discard(id int64) {
	if id == models.TemporaryID {
		l.Remove(id)
		return
	}

	l.mu.Lock()
	delete(l.drafts, id)
	l.mu.Unlock()

	l.events.publish(TopicProductChanged, id)
}

// Items returns the listed products in display order.
func (l *ProductLedger) Items() []models.Product {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Product, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.products[id].Clone())
	}
	return out
}
