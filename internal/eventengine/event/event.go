package event

type SubscriberName string
type EventName string

// Event is what publishers hand to the event engine; Payload is one of the
// typed event structs in this package.
type Event struct {
	Name    EventName
	Payload any
}

type Subscriber struct {
	Name      SubscriberName // Name of subscriber
	AddressCh chan<- any     // Where a subscriber is listening for events at.
}
