// Package e2e drives the full decode-dispatch-encode pipeline — wire,
// storage, broker, dispatch and stream together — over an in-memory
// substream, the way a real client/server pair would see it. Grounded on
// the teacher's rpc/server/adapter_istore_test.go-style full-roundtrip
// tests, generalized from its single-request-response shape to this
// repository's multi-scenario table.
package e2e

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hivekv/hivekv/broker"
	"github.com/hivekv/hivekv/dispatch"
	"github.com/hivekv/hivekv/storage/memory"
	"github.com/hivekv/hivekv/stream"
	"github.com/hivekv/hivekv/wire"
)

// harness holds one client-visible end of a substream driven by a stream
// service on the other end, sharing dispatcher state with any sibling
// harness built from newHarnessOn.
type harness struct {
	t      *testing.T
	client net.Conn
	done   chan error
}

func newDispatcher() *dispatch.Dispatcher {
	return dispatch.New(memory.New(), broker.New())
}

func newHarnessOn(t *testing.T, d *dispatch.Dispatcher) *harness {
	server, client := net.Pipe()
	svc := stream.New(server, d, zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- svc.Run() }()
	return &harness{t: t, client: client, done: done}
}

func (h *harness) send(req wire.CommandRequest) {
	frame, err := wire.EncodeFrame(wire.EncodeRequest(req), wire.AlgoGzip)
	require.NoError(h.t, err)
	_, err = h.client.Write(frame)
	require.NoError(h.t, err)
}

func (h *harness) recv() wire.CommandResponse {
	body, err := wire.DecodeFrame(h.client)
	require.NoError(h.t, err)
	resp, err := wire.DecodeResponse(body)
	require.NoError(h.t, err)
	return resp
}

func (h *harness) close() {
	_ = h.client.Close()
}

// Scenario 1: Hset then Hget observes the prior-None then the set value.
func TestScenarioSetThenGet(t *testing.T) {
	h := newHarnessOn(t, newDispatcher())
	defer h.close()

	h.send(wire.NewHset("t1", wire.KvPair{Key: "k", Value: wire.String("v")}))
	resp1 := h.recv()
	require.Equal(t, uint32(200), resp1.Status)
	require.True(t, resp1.Values[0].IsNone())

	h.send(wire.NewHget("t1", "k"))
	resp2 := h.recv()
	require.Equal(t, uint32(200), resp2.Status)
	require.True(t, resp2.Values[0].Equal(wire.String("v")))
}

// Scenario 2: Hget on a missing key is 200 with a None value, never 404.
func TestScenarioGetMissingKeyIsLenient(t *testing.T) {
	h := newHarnessOn(t, newDispatcher())
	defer h.close()

	h.send(wire.NewHget("t1", "missing"))
	resp := h.recv()
	require.Equal(t, uint32(200), resp.Status)
	require.True(t, resp.Values[0].IsNone())
}

// Scenario 3: Hmset reports prior values, then Hmget mixes hits and misses.
func TestScenarioHmsetThenHmget(t *testing.T) {
	h := newHarnessOn(t, newDispatcher())
	defer h.close()

	h.send(wire.NewHmset("t", []wire.KvPair{
		{Key: "a", Value: wire.Int64(1)},
		{Key: "b", Value: wire.Int64(2)},
	}))
	resp1 := h.recv()
	require.Equal(t, uint32(200), resp1.Status)
	require.True(t, resp1.Values[0].IsNone())
	require.True(t, resp1.Values[1].IsNone())

	h.send(wire.NewHmget("t", []string{"a", "x", "b"}))
	resp2 := h.recv()
	require.Equal(t, uint32(200), resp2.Status)
	require.True(t, resp2.Values[0].Equal(wire.Int64(1)))
	require.True(t, resp2.Values[1].IsNone())
	require.True(t, resp2.Values[2].Equal(wire.Int64(2)))
}

// Scenario 4 and 5: two independent substreams sharing one dispatcher. The
// subscriber gets a welcome carrying its id, observes a publish from the
// other substream, is then unsubscribed by a request sent on that other
// substream, and observes end-of-stream with no further delivery.
func TestScenarioSubscribePublishUnsubscribe(t *testing.T) {
	d := newDispatcher()
	sub := newHarnessOn(t, d)
	defer sub.close()
	pub := newHarnessOn(t, d)
	defer pub.close()

	sub.send(wire.NewSubscribe("news"))
	welcome := sub.recv()
	require.Equal(t, uint32(200), welcome.Status)
	require.Len(t, welcome.Values, 1)
	id := uint32(welcome.Values[0].Int)
	require.NotZero(t, id)

	pub.send(wire.NewPublish("news", []wire.Value{wire.String("hi")}))
	pubResp := pub.recv()
	require.Equal(t, uint32(200), pubResp.Status)

	msg := sub.recv()
	require.True(t, msg.Values[0].Equal(wire.String("hi")))

	pub.send(wire.NewUnsubscribe("news", id))
	unsubResp := pub.recv()
	require.Equal(t, uint32(200), unsubResp.Status)

	// The subscriber's stream service notices Done closed and tears
	// down on its own goroutine; wait for that instead of racing it.
	require.NoError(t, <-sub.done)

	pub.send(wire.NewPublish("news", []wire.Value{wire.String("bye")}))
	bye := pub.recv()
	require.Equal(t, uint32(200), bye.Status)

	// The subscriber's substream is now closed - no "bye" was or ever will
	// be delivered to it.
	_, err := wire.DecodeFrame(sub.client)
	require.Error(t, err)
}

// Scenario 6: unsubscribing an unknown (topic, id) pair is 404.
func TestScenarioUnsubscribeUnknownIs404(t *testing.T) {
	h := newHarnessOn(t, newDispatcher())
	defer h.close()

	h.send(wire.NewUnsubscribe("nope", 999))
	resp := h.recv()
	require.Equal(t, uint32(404), resp.Status)
}

// Scenario 7: a frame header naming a reserved algorithm is rejected at
// decode time - no CommandResponse is produced, and the stream service
// tears down the substream instead of trying to resynchronize.
func TestScenarioInvalidHeaderClosesSubstream(t *testing.T) {
	h := newHarnessOn(t, newDispatcher())
	defer h.close()

	header := []byte{0xf0, 0x00, 0x00, 0x00} // compressed bit + reserved algo 7
	_, err := h.client.Write(header)
	require.NoError(t, err)

	err = <-h.done
	require.Error(t, err)
}
