package eventengine

import (
	"fmt"
	"log"
	"sync"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/eventengine/event"
)

type Publisher interface {
	Publish(event *event.Event) error
}

type Subscriber interface {
	Subscribe(toEventName event.EventName, subscriber *event.Subscriber) error
}

type RegisterPublisher interface {
	Publisher
	RegisterEvents(eventNames ...event.EventName)
}

type SubscribeRegisterPublisher interface {
	Subscriber
	RegisterPublisher
}

type subscribers struct {
	names      []*event.SubscriberName
	addressChs []chan<- any
}

type EventEngineConfig struct {
	DoneCh        <-chan struct{}
	InternalSrvWG *sync.WaitGroup
}

// eventEngine is the in-process pub/sub hub. Features register the events
// they emit, subscribe with a buffered addressCh and publish through the
// engine; the engine fans every published event out to all subscribers of
// that event name.
//
// mu guards the events map and its subscriber slices: features register and
// subscribe from their own goroutines while the server is still wiring other
// features on the main goroutine.
type eventEngine struct {
	*EventEngineConfig

	mu            sync.RWMutex
	eventEngineCh chan *event.Event
	events        map[event.EventName]*subscribers
}

func NewEventEngine(cfg *EventEngineConfig) SubscribeRegisterPublisher {
	if cfg == nil {
		log.Fatalln("'eventEngineConfig' can not be nil")
	}

	if cfg.DoneCh == nil || cfg.InternalSrvWG == nil {
		log.Fatalln("either DoneCh or InternalSrvWG is nil")
	}

	e := &eventEngine{
		EventEngineConfig: cfg,
		events:            make(map[event.EventName]*subscribers, 20),
		eventEngineCh:     make(chan *event.Event, 20),
	}

	e.InternalSrvWG.Add(1)
	go e.listen()

	return e
}

func (e *eventEngine) listen() {
	defer e.InternalSrvWG.Done()

	log.Println("event engine is listening...")

	for {
		select {
		case <-e.DoneCh:
			log.Println("event engine is shutting down")
			close(e.eventEngineCh)

			// drain what publishers already queued before the shutdown
			for ev := range e.eventEngineCh {
				e.broadcast(ev)
			}

			e.shutdownSubscribersAddressChs()
			return

		case ev, isOpened := <-e.eventEngineCh:
			if !isOpened {
				log.Println("eventEngineCh is closed")
				return
			}

			e.broadcast(ev)
		}
	}
}

// broadcast snapshots the subscriber list under the read lock and sends
// outside it, so a blocked addressCh can never hold up Subscribe calls.
func (e *eventEngine) broadcast(ev *event.Event) {
	e.mu.RLock()
	subs, exists := e.events[ev.Name]
	if !exists {
		e.mu.RUnlock()
		log.Printf(
			"event %v not found. check your event handler\n",
			ev.Name,
		)
		return
	}

	names := make([]*event.SubscriberName, len(subs.names))
	copy(names, subs.names)
	addressChs := make([]chan<- any, len(subs.addressChs))
	copy(addressChs, subs.addressChs)
	e.mu.RUnlock()

	for i, addressCh := range addressChs {
		if addressCh == nil {
			log.Printf(
				"subscriber '%v's' addressCh is nil. check this event handler to make sure it has been initialized\n",
				names[i],
			)
			continue
		}

		addressCh <- ev.Payload
	}
}

// RegisterEvents adds all events a publisher can publish to, to the
// [eventEngine].
//
// IMPORTANT: Register an event before you try to publish or subscribe to it.
func (e *eventEngine) RegisterEvents(eventNames ...event.EventName) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, eventName := range eventNames {
		if _, exists := e.events[eventName]; exists {
			log.Println("event already exists:", eventName)
			continue
		}

		e.events[eventName] = &subscribers{}
	}

	log.Println("registering events:", eventNames)
}

func (e *eventEngine) Subscribe(toEventName event.EventName, newSubscriber *event.Subscriber) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs, ok := e.events[toEventName]
	if !ok {
		return fmt.Errorf(
			"event '%v' not found. make sure the publishing service called 'RegisterEvents' with this event name before subscribing",
			toEventName,
		)
	}

	subs.names = append(subs.names, &newSubscriber.Name)
	subs.addressChs = append(subs.addressChs, newSubscriber.AddressCh)

	return nil
}

func (e *eventEngine) Publish(ev *event.Event) error {
	e.mu.RLock()
	_, exists := e.events[ev.Name]
	e.mu.RUnlock()

	if !exists {
		return fmt.Errorf(
			"event %v not found. check the service which is to publish the event to make sure they called 'RegisterEvents()'",
			ev.Name,
		)
	}

	e.eventEngineCh <- ev

	return nil
}

func (e *eventEngine) shutdownSubscribersAddressChs() {
	e.mu.Lock()
	defer e.mu.Unlock()

	// one subscriber may listen on the same addressCh for several events
	closed := make(map[chan<- any]struct{})

	for _, subs := range e.events {
		for _, addressCh := range subs.addressChs {
			if addressCh == nil {
				continue
			}
			if _, alreadyClosed := closed[addressCh]; alreadyClosed {
				continue
			}
			close(addressCh)
			closed[addressCh] = struct{}{}
		}
	}

	log.Println("subscribers addressChs are shut down")
}
