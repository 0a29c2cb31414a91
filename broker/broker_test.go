package broker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hivekv/hivekv/wire"
)

func TestSubscribeDeliversWelcomeWithID(t *testing.T) {
	b := New()
	sub, err := b.Subscribe("news")
	require.NoError(t, err)
	require.NotZero(t, sub.ID)

	welcome := <-sub.Queue
	require.Equal(t, uint32(200), welcome.Status)
	require.Len(t, welcome.Values, 1)
	require.Equal(t, wire.Int64(int64(sub.ID)), welcome.Values[0])
}

func TestSubscriptionIDsAreUnique(t *testing.T) {
	b := New()
	seen := map[uint32]bool{}
	for i := 0; i < 50; i++ {
		sub, err := b.Subscribe("t")
		require.NoError(t, err)
		require.NotZero(t, sub.ID)
		require.False(t, seen[sub.ID])
		seen[sub.ID] = true
		<-sub.Queue // drain welcome
	}
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := New()
	sub, err := b.Subscribe("news")
	require.NoError(t, err)
	<-sub.Queue // welcome

	require.NoError(t, b.Publish("news", []wire.Value{wire.String("hi")}))

	got := <-sub.Queue
	require.Equal(t, uint32(200), got.Status)
	require.Len(t, got.Values, 1)
	require.True(t, got.Values[0].Equal(wire.String("hi")))
}

func TestUnsubscribeThenPublishDeliversNothing(t *testing.T) {
	b := New()
	sub, err := b.Subscribe("news")
	require.NoError(t, err)
	<-sub.Queue // welcome

	require.NoError(t, b.Unsubscribe("news", sub.ID))
	require.NoError(t, b.Publish("news", []wire.Value{wire.String("bye")}))

	select {
	case <-sub.Done:
	default:
		t.Fatal("Done should be closed after unsubscribe")
	}

	select {
	case extra := <-sub.Queue:
		t.Fatalf("expected no delivery after unsubscribe, got %v", extra)
	default:
	}
}

func TestUnsubscribeUnknownReturnsNotFound(t *testing.T) {
	b := New()
	err := b.Unsubscribe("nope", 999)
	require.Error(t, err)
}

func TestPublishWithEmptyTopicIsMalformed(t *testing.T) {
	b := New()
	err := b.Publish("", []wire.Value{wire.String("x")})
	require.Error(t, err)
}

func TestPublishToUnknownTopicSucceeds(t *testing.T) {
	b := New()
	require.NoError(t, b.Publish("nobody-subscribed", []wire.Value{wire.String("x")}))
}

func TestBackpressureDropsRatherThanBlocks(t *testing.T) {
	b := NewWithCapacity(1)
	sub, err := b.Subscribe("t")
	require.NoError(t, err)
	<-sub.Queue // welcome, queue now empty with capacity 1

	// Fill the queue, then publish again - the second publish must not
	// block and must not be delivered.
	require.NoError(t, b.Publish("t", []wire.Value{wire.String("first")}))
	require.NoError(t, b.Publish("t", []wire.Value{wire.String("second")}))

	got := <-sub.Queue
	require.True(t, got.Values[0].Equal(wire.String("first")))

	select {
	case extra := <-sub.Queue:
		t.Fatalf("expected no second message, got %v", extra)
	default:
	}
}

func TestShutdownSignalsDoneToAllSubscribers(t *testing.T) {
	b := New()
	sub1, err := b.Subscribe("t")
	require.NoError(t, err)
	sub2, err := b.Subscribe("t")
	require.NoError(t, err)
	<-sub1.Queue
	<-sub2.Queue

	b.Shutdown()

	select {
	case <-sub1.Done:
	default:
		t.Fatal("sub1.Done should be closed after shutdown")
	}
	select {
	case <-sub2.Done:
	default:
		t.Fatal("sub2.Done should be closed after shutdown")
	}
}
