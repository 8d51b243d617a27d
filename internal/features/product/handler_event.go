package product

import (
	"context"
	"log"
	"sync"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/eventengine"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/eventengine/event"
	"github.com/google/uuid"
)

// subscriberName is the name of this event handler.
const subscriberName event.SubscriberName = "handler_event.product"

type servicerEvent interface {
	InvalidateCachedProduct(ctx context.Context, productID uuid.UUID)
}

type HandlerEventsConfig struct {
	DoneCh        <-chan struct{}
	InternalSrvWG *sync.WaitGroup
	EventEngine   eventengine.SubscribeRegisterPublisher
	Service       servicerEvent
	AddressChSize uint16
}

type handlerEvents struct {
	*HandlerEventsConfig
	addressCh chan any
}

func NewHandlerEvents(cfg *HandlerEventsConfig) *handlerEvents {
	if cfg.AddressChSize == 0 {
		cfg.AddressChSize = 10
	}

	if cfg.DoneCh == nil || cfg.InternalSrvWG == nil || cfg.EventEngine == nil || cfg.Service == nil {
		log.Fatalf(
			"either 'DoneCh', 'InternalSrvWG', 'EventEngine' or 'Service' is nil in '%s'",
			subscriberName,
		)
	}

	he := &handlerEvents{
		HandlerEventsConfig: cfg,
		addressCh:           make(chan any, cfg.AddressChSize),
	}

	he.InternalSrvWG.Add(1)
	go he.listen()

	return he
}

func (h *handlerEvents) listen() {
	defer h.InternalSrvWG.Done()

	h.addSubscriptions()

	log.Printf("%s is listening...\n", subscriberName)

	// a for select statement is not used here because the event engine will
	// close the addressCh
	for newEvent := range h.addressCh {
		switch ne := newEvent.(type) {
		case *event.StockDepletedEvent:
			h.stockDepletedEventHandler(ne)

		default:
			log.Printf(
				"received unknown event type: %T\n",
				ne,
			)
		}
	}

	log.Printf("shutting down %s\n", subscriberName)
}

// stockDepletedEventHandler drops the cached entries for a product whose
// stock just fell to its restock threshold, so readers stop seeing the stale
// quantity before the TTL expires.
func (h *handlerEvents) stockDepletedEventHandler(depleted *event.StockDepletedEvent) {
	log.Printf(
		"restock alert: product %q (%s) is down to %d units\n",
		depleted.Name,
		depleted.ProductID,
		depleted.Remaining,
	)

	h.Service.InvalidateCachedProduct(
		context.Background(),
		depleted.ProductID,
	)
}

// addSubscriptions iterates over subscribeToEventNames and subscribes to
// each event with addressCh.
func (h *handlerEvents) addSubscriptions() {
	subscribeToEventNames := [1]event.EventName{
		event.StockDepletedEventName,
	}

	for _, eventName := range subscribeToEventNames {
		err := h.EventEngine.Subscribe(
			eventName,
			&event.Subscriber{
				Name:      subscriberName,
				AddressCh: h.addressCh,
			},
		)
		if err != nil {
			log.Fatalf(
				"error in subscriber '%s'\nerror subscribing to events: %v\n",
				subscriberName,
				err,
			)
		}
	}
}
