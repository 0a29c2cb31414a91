package transport

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/libp2p/go-yamux/v5"

	"github.com/hivekv/hivekv/internal/errs"
)

// TLSYamuxAcceptor listens for TLS connections and multiplexes each one
// with a yamux session, the one concrete transport binding this repository
// ships: Noise and QUIC are accepted as configuration values but have no
// implementation here (see DESIGN.md).
type TLSYamuxAcceptor struct {
	listener net.Listener
}

var _ Acceptor = (*TLSYamuxAcceptor)(nil)

// ListenTLS starts a TLS listener on addr using cfg.
func ListenTLS(addr string, cfg *tls.Config) (*TLSYamuxAcceptor, error) {
	ln, err := tls.Listen("tcp", addr, cfg)
	if err != nil {
		return nil, errs.Transport("transport: listen %s: %v", addr, err)
	}
	return &TLSYamuxAcceptor{listener: ln}, nil
}

func (a *TLSYamuxAcceptor) Accept(ctx context.Context) (Connection, error) {
	type acceptResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan acceptResult, 1)
	go func() {
		conn, err := a.listener.Accept()
		resultCh <- acceptResult{conn, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-resultCh:
		if r.err != nil {
			return nil, errs.Transport("transport: accept: %v", r.err)
		}
		session, err := yamux.Server(r.conn, yamux.DefaultConfig(), nil)
		if err != nil {
			_ = r.conn.Close()
			return nil, errs.Transport("transport: yamux handshake: %v", err)
		}
		return &yamuxConnection{session: session}, nil
	}
}

func (a *TLSYamuxAcceptor) Close() error {
	return a.listener.Close()
}

type yamuxConnection struct {
	session *yamux.Session
}

var _ Connection = (*yamuxConnection)(nil)

func (c *yamuxConnection) AcceptSubstream(ctx context.Context) (Substream, error) {
	type result struct {
		stream *yamux.Stream
		err    error
	}
	resultCh := make(chan result, 1)
	go func() {
		s, err := c.session.AcceptStream()
		resultCh <- result{s, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-resultCh:
		if r.err != nil {
			return nil, errs.Transport("transport: accept substream: %v", r.err)
		}
		return r.stream, nil
	}
}

func (c *yamuxConnection) Close() error {
	return c.session.Close()
}
