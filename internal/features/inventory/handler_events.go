package inventory

import (
	"context"
	"log"
	"sync"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/eventengine"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/eventengine/event"
	"github.com/google/uuid"
)

// subscriberName is the name of this event handler.
const subscriberName event.SubscriberName = "handler_events.inventory"

type servicer interface {
	checkRestockLevel(ctx context.Context, productID uuid.UUID) error
}

type HandlerEventsConfig struct {
	DoneCh        <-chan struct{}
	InternalSrvWG *sync.WaitGroup
	EventEngine   eventengine.SubscribeRegisterPublisher
	Service       servicer
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
		case *event.OrderPlacedEvent:
			h.orderPlacedEventHandler(ne)

		default:
			log.Printf(
				"received unknown event type: %T\n",
				ne,
			)
		}
	}

	log.Printf("shutting down %s\n", subscriberName)
}

// orderPlacedEventHandler checks the stock level of every product the order
// touched, so products running low raise a depletion event.
func (h *handlerEvents) orderPlacedEventHandler(placed *event.OrderPlacedEvent) {
	ctx := context.Background()

	for _, item := range placed.Items {
		if err := h.Service.checkRestockLevel(ctx, item.ProductID); err != nil {
			log.Printf(
				"failed to check restock level for product %s: %v\n",
				item.ProductID,
				err,
			)
		}
	}
}

// addSubscriptions iterates over subscribeToEventNames and subscribes to
// each event with addressCh.
func (h *handlerEvents) addSubscriptions() {
	subscribeToEventNames := [1]event.EventName{
		event.OrderPlacedEventName,
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
