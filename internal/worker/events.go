package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// StockChannelPrefix + company ID is the pub/sub channel for stock changes.
const StockChannelPrefix = "stock:"

// StockEvent describes one committed stock movement.
type StockEvent struct {
	CompanyID         uuid.UUID `json:"companyId"`
	ItemID            uuid.UUID `json:"itemId"`
	ItemName          string    `json:"itemName"`
	MovementType      string    `json:"movementType"`
	Delta             int       `json:"delta"`
	QuantityBefore    int       `json:"quantityBefore"`
	Quantity          int       `json:"quantity"`
	CriticalThreshold int       `json:"criticalThreshold"`
	At                time.Time `json:"at"`
}

// CrossedThreshold reports whether this movement took the item from above its
// critical threshold to at or below it.
func (e StockEvent) CrossedThreshold() bool {
	return e.QuantityBefore > e.CriticalThreshold && e.Quantity <= e.CriticalThreshold
}

// Notifier fans committed stock changes out to subscribers and queues
// low-stock alerts. It is best-effort: failures are logged, never returned,
// because the movements it reports are already committed.
type Notifier struct {
	rdb        *redis.Client
	dispatcher *Dispatcher
}

func NewNotifier(rdb *redis.Client, dispatcher *Dispatcher) *Notifier {
	return &Notifier{rdb: rdb, dispatcher: dispatcher}
}

// StockChanged publishes each event and enqueues an alert for every item that
// crossed its threshold.
func (n *Notifier) StockChanged(ctx context.Context, events []StockEvent) {
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Error().Err(err).Msg("notifier: marshal stock event")
			continue
		}
		if err := n.rdb.Publish(ctx, StockChannelPrefix+ev.CompanyID.String(), data).Err(); err != nil {
			log.Warn().Err(err).Str("item_id", ev.ItemID.String()).Msg("notifier: publish failed")
		}
		if ev.CrossedThreshold() && n.dispatcher != nil {
			payload := LowStockPayload{
				CompanyID:         ev.CompanyID,
				ItemID:            ev.ItemID,
				ItemName:          ev.ItemName,
				Quantity:          ev.Quantity,
				CriticalThreshold: ev.CriticalThreshold,
			}
			if err := n.dispatcher.EnqueueLowStock(ctx, payload); err != nil {
				log.Warn().Err(err).Str("item_id", ev.ItemID.String()).Msg("notifier: enqueue low-stock alert failed")
			}
		}
	}
}

// Subscribe streams the stock events of one company until ctx is done.
func (n *Notifier) Subscribe(ctx context.Context, companyID uuid.UUID) (<-chan StockEvent, error) {
	sub := n.rdb.Subscribe(ctx, StockChannelPrefix+companyID.String())
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan StockEvent, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev StockEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Warn().Err(err).Msg("notifier: bad stock event payload")
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
