package ledger

import (
	EventBus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

const (
	TopicProductChanged = "ledger:product:changed"
	TopicImagesChanged  = "ledger:images:changed"
)

// Events carries change notifications out of the ledgers. Handlers run
// synchronously on the goroutine that performed the mutation, after the
// ledger has released its lock.
type Events struct {
	bus EventBus.Bus
}

func NewEvents() *Events {
	return &Events{bus: EventBus.New()}
}

// SubscribeProducts registers fn for product ledger changes.
func (e *Events) SubscribeProducts(fn func(productID int64)) error {
	return e.bus.Subscribe(TopicProductChanged, fn)
}

// SubscribeImages registers fn for image ledger changes.
func (e *Events) SubscribeImages(fn func(productID int64)) error {
	return e.bus.Subscribe(TopicImagesChanged, fn)
}

func (e *Events) publish(topic string, productIDs ...int64) {
	if e == nil {
		return
	}
	for _, id := range productIDs {
		zap.L().Debug("ledger changed", zap.String("topic", topic), zap.Int64("product_id", id))
		e.bus.Publish(topic, id)
	}
}
