// Package client is the counterpart to the stream service: it dials a
// server, opens one substream per call, and speaks the same frame codec in
// reverse. Grounded on the teacher's rpc/client package shape (one
// long-lived connection, one round trip per call), adapted from dKV's
// pluggable IRPCClientTransport to this repository's concrete TLS+yamux
// binding.
package client

import (
	"crypto/tls"
	"errors"
	"io"

	"github.com/libp2p/go-yamux/v5"

	"github.com/hivekv/hivekv/internal/errs"
	"github.com/hivekv/hivekv/wire"
)

// Client holds one multiplexed connection to a server. Every exported
// method is safe for concurrent use; each opens its own substream.
type Client struct {
	session *yamux.Session
}

// Dial opens a TLS connection to addr and negotiates a yamux session over
// it, mirroring transport.ListenTLS on the server side.
func Dial(addr string, tlsCfg *tls.Config) (*Client, error) {
	conn, err := tls.Dial("tcp", addr, tlsCfg)
	if err != nil {
		return nil, errs.Transport("client: dial %s: %v", addr, err)
	}
	session, err := yamux.Client(conn, yamux.DefaultConfig(), nil)
	if err != nil {
		_ = conn.Close()
		return nil, errs.Transport("client: yamux handshake: %v", err)
	}
	return &Client{session: session}, nil
}

// Close tears down the underlying session and every open substream.
func (c *Client) Close() error {
	return c.session.Close()
}

// Call opens a substream, sends one request, reads back its one response,
// and closes the substream. Not valid for wire.CmdSubscribe - use
// Subscribe instead, since a subscription's substream stays open.
func (c *Client) Call(req wire.CommandRequest) (wire.CommandResponse, error) {
	stream, err := c.session.OpenStream()
	if err != nil {
		return wire.CommandResponse{}, errs.Transport("client: open substream: %v", err)
	}
	defer stream.Close()

	if err := writeRequest(stream, req); err != nil {
		return wire.CommandResponse{}, err
	}
	return readResponse(stream)
}

// Subscription is a held-open substream draining one topic's messages.
type Subscription struct {
	ID       uint32
	Messages <-chan wire.CommandResponse
	Errs     <-chan error

	stream *yamux.Stream
}

// Close unsubscribes by closing the substream; the server observes this as
// a vanished peer and unregisters the subscription.
func (s *Subscription) Close() error {
	return s.stream.Close()
}

// Subscribe opens a substream, sends a Subscribe request, and reads the
// welcome response for the assigned subscription id, then spawns a
// goroutine delivering every further message on Messages until the
// substream closes.
func Subscribe(c *Client, topic string) (*Subscription, error) {
	stream, err := c.session.OpenStream()
	if err != nil {
		return nil, errs.Transport("client: open substream: %v", err)
	}

	if err := writeRequest(stream, wire.NewSubscribe(topic)); err != nil {
		_ = stream.Close()
		return nil, err
	}

	welcome, err := readResponse(stream)
	if err != nil {
		_ = stream.Close()
		return nil, err
	}
	if welcome.Status != 200 || len(welcome.Values) != 1 {
		_ = stream.Close()
		return nil, errs.Backend("client: malformed subscribe welcome: %+v", welcome)
	}

	messages := make(chan wire.CommandResponse)
	errsCh := make(chan error, 1)
	go func() {
		defer close(messages)
		for {
			resp, err := readResponse(stream)
			if err != nil {
				if !errors.Is(err, wire.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
					errsCh <- err
				}
				return
			}
			messages <- resp
		}
	}()

	return &Subscription{
		ID:       uint32(welcome.Values[0].Int),
		Messages: messages,
		Errs:     errsCh,
		stream:   stream,
	}, nil
}

func writeRequest(w io.Writer, req wire.CommandRequest) error {
	frame, err := wire.EncodeFrame(wire.EncodeRequest(req), wire.AlgoZstd)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

func readResponse(r io.Reader) (wire.CommandResponse, error) {
	body, err := wire.DecodeFrame(r)
	if err != nil {
		return wire.CommandResponse{}, err
	}
	return wire.DecodeResponse(body)
}
