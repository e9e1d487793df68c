// Package events fans election changes out to the clients watching them.
package events

import (
	"fmt"
	"sync"
)

// Event is a change that happened to an election.
type Event struct {
	ElectionID string `json:"election_id"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
}

// subscription is one watcher of an election. An empty election id
// watches every election.
type subscription struct {
	electionID string
	ch         chan Event
}

// Broker keeps the subscriptions of the connected watchers, keyed by a
// subscriber id that is unique per connection.
type Broker struct {
	subs map[string]subscription
	mu   sync.RWMutex
}

// New constructs a broker with no subscriptions.
func New() *Broker {
	return &Broker{
		subs: make(map[string]subscription),
	}
}

// Shutdown closes every subscription so the watchers stop streaming.
func (b *Broker) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Subscribe registers the subscriber for the events of one election. A
// second call with the same subscriber id returns the existing channel.
func (b *Broker) Subscribe(subscriberID string, electionID string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, exists := b.subs[subscriberID]; exists {
		return sub.ch
	}

	// Publish drops events for a watcher whose buffer is full.
	const eventBuffer = 100

	sub := subscription{
		electionID: electionID,
		ch:         make(chan Event, eventBuffer),
	}
	b.subs[subscriberID] = sub

	return sub.ch
}

// Unsubscribe closes and removes the subscription.
func (b *Broker) Unsubscribe(subscriberID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, exists := b.subs[subscriberID]
	if !exists {
		return fmt.Errorf("subscriber %q does not exist", subscriberID)
	}

	delete(b.subs, subscriberID)
	close(sub.ch)

	return nil
}

// Publish hands the event to every watcher of its election without waiting
// on any of them.
func (b *Broker) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.electionID != "" && sub.electionID != e.ElectionID {
			continue
		}

		select {
		case sub.ch <- e:
		default:
		}
	}
}
