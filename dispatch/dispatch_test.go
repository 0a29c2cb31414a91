package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hivekv/hivekv/broker"
	"github.com/hivekv/hivekv/storage/memory"
	"github.com/hivekv/hivekv/wire"
)

func newDispatcher() *Dispatcher {
	return New(memory.New(), broker.New())
}

func TestHgetOnMissingKeyReturns200WithNone(t *testing.T) {
	d := newDispatcher()
	res := d.Dispatch(wire.NewHget("t1", "missing"))
	require.Equal(t, uint32(200), res.Response.Status)
	require.Len(t, res.Response.Values, 1)
	require.True(t, res.Response.Values[0].IsNone())
}

func TestHsetThenHgetObservesValue(t *testing.T) {
	d := newDispatcher()

	setRes := d.Dispatch(wire.NewHset("t1", wire.KvPair{Key: "k", Value: wire.String("v")}))
	require.Equal(t, uint32(200), setRes.Response.Status)
	require.True(t, setRes.Response.Values[0].IsNone())

	getRes := d.Dispatch(wire.NewHget("t1", "k"))
	require.Equal(t, uint32(200), getRes.Response.Status)
	require.True(t, getRes.Response.Values[0].Equal(wire.String("v")))
}

func TestHmsetThenHmget(t *testing.T) {
	d := newDispatcher()

	d.Dispatch(wire.NewHmset("t", []wire.KvPair{
		{Key: "a", Value: wire.Int64(1)},
		{Key: "b", Value: wire.Int64(2)},
	}))

	res := d.Dispatch(wire.NewHmget("t", []string{"a", "x", "b"}))
	require.Len(t, res.Response.Values, 3)
	require.True(t, res.Response.Values[0].Equal(wire.Int64(1)))
	require.True(t, res.Response.Values[1].IsNone())
	require.True(t, res.Response.Values[2].Equal(wire.Int64(2)))
}

func TestHgetallOnUnknownTableIs200Empty(t *testing.T) {
	d := newDispatcher()
	res := d.Dispatch(wire.NewHgetall("nope"))
	require.Equal(t, uint32(200), res.Response.Status)
	require.Empty(t, res.Response.Pairs)
}

func TestEmptyTableIsMalformed(t *testing.T) {
	d := newDispatcher()
	res := d.Dispatch(wire.NewHget("", "k"))
	require.Equal(t, uint32(422), res.Response.Status)
	require.NotEmpty(t, res.Response.Message)
}

func TestHexistAndHmexist(t *testing.T) {
	d := newDispatcher()
	d.Dispatch(wire.NewHset("t", wire.KvPair{Key: "k", Value: wire.Bool(true)}))

	res := d.Dispatch(wire.NewHexist("t", "k"))
	require.True(t, res.Response.Values[0].Equal(wire.Bool(true)))

	res = d.Dispatch(wire.NewHmexist("t", []string{"k", "missing"}))
	require.True(t, res.Response.Values[0].Equal(wire.Bool(true)))
	require.True(t, res.Response.Values[1].Equal(wire.Bool(false)))
}

func TestHdelReturnsPrior(t *testing.T) {
	d := newDispatcher()
	d.Dispatch(wire.NewHset("t", wire.KvPair{Key: "k", Value: wire.Int64(7)}))

	res := d.Dispatch(wire.NewHdel("t", "k"))
	require.True(t, res.Response.Values[0].Equal(wire.Int64(7)))

	res = d.Dispatch(wire.NewHexist("t", "k"))
	require.True(t, res.Response.Values[0].Equal(wire.Bool(false)))
}

func TestSubscribeReturnsSubscriptionNotInlineResponse(t *testing.T) {
	d := newDispatcher()
	res := d.Dispatch(wire.NewSubscribe("news"))
	require.NotNil(t, res.Subscription)

	welcome := <-res.Subscription.Queue
	require.Equal(t, uint32(200), welcome.Status)
	require.Len(t, welcome.Values, 1)
}

func TestUnsubscribeUnknownIs404(t *testing.T) {
	d := newDispatcher()
	res := d.Dispatch(wire.NewUnsubscribe("nope", 999))
	require.Equal(t, uint32(404), res.Response.Status)
	require.Equal(t, "subscription not found", res.Response.Message)
}

func TestPublishAlwaysSucceedsForNonEmptyTopic(t *testing.T) {
	d := newDispatcher()
	res := d.Dispatch(wire.NewPublish("news", []wire.Value{wire.String("hi")}))
	require.Equal(t, uint32(200), res.Response.Status)
	require.Empty(t, res.Response.Message)
}
