// Package broker implements the topic-based pub/sub fanout: a topic
// registry, subscription-id allocation, bounded per-subscriber queues with
// a backpressure-drop policy, and clean unsubscribe/teardown ordering.
//
// Grounded on the teacher's use of github.com/puzpuzpuz/xsync/v3 for
// concurrent maps with per-entry locking (Compute), and on
// original_source/src/service/mod.rs's topic-keyed subscriber bookkeeping.
package broker

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/hivekv/hivekv/internal/errs"
	"github.com/hivekv/hivekv/internal/obs"
	"github.com/hivekv/hivekv/wire"
)

// DefaultQueueCapacity is the default bounded-queue capacity per
// subscriber.
const DefaultQueueCapacity = 128

type subscriberSet = *xsync.MapOf[uint32, struct{}]

// Subscriber is the broker's view of one live subscription: the channel
// its owning stream reads responses from, plus Done, closed exactly once
// to signal end-of-stream. Queue itself is never closed - Publish may
// still hold a reference to it after Unsubscribe/Shutdown has removed the
// subscription from the broker's maps, and a send on a closed channel
// panics, so closing is done on Done instead and Queue is simply dropped
// once nothing references it.
type Subscriber struct {
	ID    uint32
	Topic string
	Queue chan wire.CommandResponse
	Done  chan struct{}
}

// Broker owns the topics and subscriptions maps plus the id allocator, per
// the "Broker map graph" design note: topics name ids, subscriptions own
// queues, and deletion always removes from topics before signalling Done.
type Broker struct {
	queueCapacity int

	topics        *xsync.MapOf[string, subscriberSet]
	subscriptions *xsync.MapOf[uint32, *Subscriber]
	nextID        atomic.Uint32
}

// New creates an empty broker with the default queue capacity.
func New() *Broker {
	return NewWithCapacity(DefaultQueueCapacity)
}

// NewWithCapacity creates an empty broker with a custom per-subscriber
// queue capacity, primarily for tests that want to observe backpressure
// drops without publishing hundreds of messages.
func NewWithCapacity(capacity int) *Broker {
	b := &Broker{
		queueCapacity: capacity,
		topics:        xsync.NewMapOf[string, subscriberSet](),
		subscriptions: xsync.NewMapOf[uint32, *Subscriber](),
	}
	// Seed the allocator so ids are never 0; Subscribe always Adds before
	// reading, so the first issued id is 2, not 1.
	b.nextID.Store(1)
	return b
}

// Subscribe allocates a fresh subscription id under topic, registers it,
// and enqueues the welcome response (status 200, values=[id]) onto its
// queue before returning it. The caller reads the welcome response as the
// first item off Subscriber.Queue.
func (b *Broker) Subscribe(topic string) (*Subscriber, error) {
	if topic == "" {
		return nil, errs.Malformed("subscribe: topic must not be empty")
	}

	id := b.nextID.Add(1)
	sub := &Subscriber{
		ID:    id,
		Topic: topic,
		Queue: make(chan wire.CommandResponse, b.queueCapacity),
		Done:  make(chan struct{}),
	}

	// Enqueue the welcome before the subscription is visible to Publish, so
	// it is always the first item on Queue.
	sub.Queue <- wire.CommandResponse{
		Status: 200,
		Values: []wire.Value{wire.Int64(int64(id))},
	}

	b.subscriptions.Store(id, sub)

	ids, _ := b.topics.Compute(topic, func(oldValue subscriberSet, loaded bool) (subscriberSet, bool) {
		if !loaded {
			oldValue = xsync.NewMapOf[uint32, struct{}]()
		}
		oldValue.Store(id, struct{}{})
		return oldValue, false
	})
	_ = ids

	return sub, nil
}

// Unsubscribe removes id from topic, then atomically removes and signals
// its subscriber, in that order, per invariant 4 (no publish may observe a
// partially removed subscriber). Returns errs.NotFound if (topic, id) was
// not a live subscription.
func (b *Broker) Unsubscribe(topic string, id uint32) error {
	ids, ok := b.topics.Load(topic)
	if !ok {
		return errs.NotFound("subscription not found")
	}

	existed := false
	ids.Compute(id, func(oldValue struct{}, loaded bool) (struct{}, bool) {
		existed = loaded
		return struct{}{}, true // always delete
	})
	if !existed {
		return errs.NotFound("subscription not found")
	}

	if ids.Size() == 0 {
		b.topics.Delete(topic)
	}

	// LoadAndDelete is atomic, so exactly one caller ever wins the removal
	// and closes Done - even if this races another Unsubscribe for the same
	// id, or a concurrent Shutdown.
	if sub, ok := b.subscriptions.LoadAndDelete(id); ok {
		close(sub.Done)
	}

	obs.BrokerUnsubscribes.Inc()
	return nil
}

// Publish snapshots the subscriber set under topic and enqueues a response
// carrying values onto each subscriber's queue. Enqueue never blocks: a
// full queue drops the message for that subscriber only, incrementing the
// dropped-message counter. Publish itself always succeeds unless topic is
// empty.
//
// Queue is never closed by anyone - Unsubscribe and Shutdown signal
// end-of-stream via Done instead - so this send can never race a close and
// can never panic, even against a concurrent Unsubscribe for the same id.
func (b *Broker) Publish(topic string, values []wire.Value) error {
	if topic == "" {
		return errs.Malformed("publish: topic must not be empty")
	}

	ids, ok := b.topics.Load(topic)
	if !ok {
		return nil // no subscribers, nothing to do
	}

	resp := wire.CommandResponse{Status: 200, Values: values}

	ids.Range(func(id uint32, _ struct{}) bool {
		sub, ok := b.subscriptions.Load(id)
		if !ok {
			return true // unsubscribed between snapshot and delivery
		}
		select {
		case sub.Queue <- resp:
		default:
			obs.BrokerPublishDropped.Inc()
		}
		return true
	})

	return nil
}

// UnsubscribeAll tears down every subscription a disconnecting stream
// still owns. Errors unsubscribing an already-gone id are ignored - the
// caller is cleaning up, not reporting to a client.
func (b *Broker) UnsubscribeAll(subs []*Subscriber) {
	for _, sub := range subs {
		_ = b.Unsubscribe(sub.Topic, sub.ID)
	}
}

// Shutdown signals end-of-stream to every live subscriber. It collects ids
// first, then removes and closes each one through the same LoadAndDelete
// path Unsubscribe uses, so a Shutdown racing an Unsubscribe for the same
// id still closes Done exactly once.
func (b *Broker) Shutdown() {
	var ids []uint32
	b.subscriptions.Range(func(id uint32, _ *Subscriber) bool {
		ids = append(ids, id)
		return true
	})
	for _, id := range ids {
		if sub, ok := b.subscriptions.LoadAndDelete(id); ok {
			close(sub.Done)
		}
	}
	b.topics.Clear()
}
