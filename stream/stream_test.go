package stream

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hivekv/hivekv/broker"
	"github.com/hivekv/hivekv/dispatch"
	"github.com/hivekv/hivekv/storage/memory"
	"github.com/hivekv/hivekv/wire"
)

// pipeSubstream adapts one end of a net.Pipe to transport.Substream,
// which only needs Read/Write/Close - net.Conn already provides those.
func pipeSubstream() (server net.Conn, client net.Conn) {
	return net.Pipe()
}

func writeRequest(t *testing.T, conn net.Conn, req wire.CommandRequest) {
	frame, err := wire.EncodeFrame(wire.EncodeRequest(req), wire.AlgoGzip)
	require.NoError(t, err)
	_, err = conn.Write(frame)
	require.NoError(t, err)
}

func readResponse(t *testing.T, conn net.Conn) wire.CommandResponse {
	body, err := wire.DecodeFrame(conn)
	require.NoError(t, err)
	resp, err := wire.DecodeResponse(body)
	require.NoError(t, err)
	return resp
}

func TestStreamServiceHandlesSingleRequest(t *testing.T) {
	server, client := pipeSubstream()
	d := dispatch.New(memory.New(), broker.New())
	svc := New(server, d, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- svc.Run() }()

	writeRequest(t, client, wire.NewHset("t", wire.KvPair{Key: "k", Value: wire.String("v")}))
	resp := readResponse(t, client)
	require.Equal(t, uint32(200), resp.Status)

	writeRequest(t, client, wire.NewHget("t", "k"))
	resp = readResponse(t, client)
	require.Equal(t, uint32(200), resp.Status)
	require.True(t, resp.Values[0].Equal(wire.String("v")))

	require.NoError(t, client.Close())
	require.NoError(t, <-done)
}

func TestStreamServiceSubscribeDrainsQueue(t *testing.T) {
	server, client := pipeSubstream()
	br := broker.New()
	d := dispatch.New(memory.New(), br)
	svc := New(server, d, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- svc.Run() }()

	writeRequest(t, client, wire.NewSubscribe("news"))
	welcome := readResponse(t, client)
	require.Equal(t, uint32(200), welcome.Status)
	require.Len(t, welcome.Values, 1)

	require.NoError(t, br.Publish("news", []wire.Value{wire.String("hi")}))
	msg := readResponse(t, client)
	require.True(t, msg.Values[0].Equal(wire.String("hi")))

	require.NoError(t, client.Close())
	<-done
}
