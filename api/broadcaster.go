package api

import (
	"sync"
	"time"
)

// EventKind names the three shapes of Event.Data a subscriber can
// filter on: VM state snapshots, program stdout, and execution
// milestones (breakpoint hit, halted, interrupted).
type EventKind string

const (
	// EventKindState tags an Event whose Data is a StateEvent.
	EventKindState EventKind = "state"
	// EventKindOutput tags an Event whose Data is an OutputEvent.
	EventKindOutput EventKind = "output"
	// EventKindExecution tags an Event whose Data is an ExecutionEvent.
	EventKindExecution EventKind = "event"
)

// Subscription represents a client's subscription to events.
type Subscription struct {
	SessionID  string
	EventKinds map[EventKind]bool
	Channel    chan Event
}

// Broadcaster fans session events out to every subscribed WebSocket
// client. A session's Debugger never talks to a client directly: it
// only ever produces StateEvent/OutputEvent/ExecutionEvent values,
// which the broadcaster wraps in an Event and routes by SessionID and
// EventKind.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	broadcast     chan Event
	register      chan *Subscription
	unregister    chan *Subscription
	done          chan struct{}
}

// NewBroadcaster creates and starts a new event broadcaster.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
		broadcast:     make(chan Event, 256),
		register:      make(chan *Subscription),
		unregister:    make(chan *Subscription),
		done:          make(chan struct{}),
	}

	go b.run()
	return b
}

// run is the broadcaster's event loop: registration, unregistration,
// and fan-out all happen on this single goroutine so subscriptions
// need no lock of their own.
func (b *Broadcaster) run() {
	for {
		select {
		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub.Channel)
			}
			b.mu.Unlock()

		case event := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				if sub.SessionID != "" && sub.SessionID != event.SessionID {
					continue
				}
				if len(sub.EventKinds) > 0 && !sub.EventKinds[EventKind(event.Type)] {
					continue
				}

				select {
				case sub.Channel <- event:
				default:
					// Slow client: drop the event rather than stall the broadcaster.
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub.Channel)
			}
			b.subscriptions = make(map[*Subscription]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe creates a new subscription for events. sessionID filters
// to a specific session (empty = all sessions); kinds filters by
// event kind (empty = all kinds).
func (b *Broadcaster) Subscribe(sessionID string, kinds []EventKind) *Subscription {
	kindSet := make(map[EventKind]bool, len(kinds))
	for _, k := range kinds {
		kindSet[k] = true
	}

	sub := &Subscription{
		SessionID:  sessionID,
		EventKinds: kindSet,
		Channel:    make(chan Event, 64),
	}

	b.register <- sub
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.unregister <- sub
}

// Broadcast sends event to every matching subscription. If the
// broadcaster's internal queue is full the event is dropped rather
// than blocking the caller (a CPU step loop).
func (b *Broadcaster) Broadcast(event Event) {
	select {
	case b.broadcast <- event:
	default:
	}
}

// BroadcastState sends a VM state snapshot (pc, registers, status)
// for sessionID.
func (b *Broadcaster) BroadcastState(sessionID string, state StateEvent) {
	b.Broadcast(Event{
		Type:      string(EventKindState),
		SessionID: sessionID,
		Timestamp: time.Now(),
		Data:      state,
	})
}

// BroadcastOutput sends one chunk of the session's Out-instruction
// stdout.
func (b *Broadcaster) BroadcastOutput(sessionID, stream, content string) {
	b.Broadcast(Event{
		Type:      string(EventKindOutput),
		SessionID: sessionID,
		Timestamp: time.Now(),
		Data: OutputEvent{
			Stream:  stream,
			Content: content,
		},
	})
}

// BroadcastExecutionEvent sends an execution milestone: a breakpoint
// hit, a halt, or an interrupted run.
func (b *Broadcaster) BroadcastExecutionEvent(sessionID, eventName string, address uint16, message string) {
	b.Broadcast(Event{
		Type:      string(EventKindExecution),
		SessionID: sessionID,
		Timestamp: time.Now(),
		Data: ExecutionEvent{
			Event:   eventName,
			Address: address,
			Message: message,
		},
	})
}

// Close shuts down the broadcaster and closes all subscriptions.
func (b *Broadcaster) Close() {
	close(b.done)
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Broadcaster) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}
