// Package server wires the acceptor, dispatcher, storage engine and broker
// together into the running process: accept a connection, spawn one task
// per connection, which spawns one task per substream, each running the
// stream service - the fan-out the connection acceptor (component F) is
// responsible for.
//
// Grounded on the teacher's rpc/transport/base/server.go accept loop,
// generalized from its semaphore+WaitGroup worker pool to
// github.com/sourcegraph/conc's panic-contained goroutine groups, a
// dependency already present (indirectly) in the teacher's graph.
package server

import (
	"context"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/hivekv/hivekv/dispatch"
	"github.com/hivekv/hivekv/internal/obs"
	"github.com/hivekv/hivekv/stream"
	"github.com/hivekv/hivekv/transport"
)

// Server accepts connections from an Acceptor and drives each substream
// through the stream service until shutdown.
type Server struct {
	acceptor   transport.Acceptor
	dispatcher *dispatch.Dispatcher
	log        *zap.Logger

	// EnableJaeger, when set, tags each connection's and substream's log
	// lines with a fresh trace/span id (see internal/obs.WithTrace).
	EnableJaeger bool
}

// New builds a Server over the given acceptor and dispatcher.
func New(acceptor transport.Acceptor, dispatcher *dispatch.Dispatcher, log *zap.Logger) *Server {
	return &Server{acceptor: acceptor, dispatcher: dispatcher, log: log}
}

// Serve accepts connections until ctx is cancelled; a failed Accept is
// logged and the loop goes on. Cancelling ctx ends each connection's
// substream accept loop, and closing that connection then ends every
// substream task running on it.
func (s *Server) Serve(ctx context.Context) error {
	var wg conc.WaitGroup
	defer wg.Wait()

	for {
		conn, err := s.acceptor.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}

		wg.Go(func() {
			s.serveConnection(ctx, conn)
		})
	}
}

func (s *Server) serveConnection(ctx context.Context, conn transport.Connection) {
	var wg conc.WaitGroup
	defer wg.Wait()
	// Runs before wg.Wait: closing the connection ends its substreams.
	defer conn.Close()

	connLog := obs.WithTrace(s.log, s.EnableJaeger)

	for {
		substream, err := conn.AcceptSubstream(ctx)
		if err != nil {
			return
		}

		wg.Go(func() {
			streamLog := obs.WithSpan(connLog, s.EnableJaeger)
			svc := stream.New(substream, s.dispatcher, streamLog)
			if err := svc.Run(); err != nil {
				streamLog.Debug("substream ended", zap.Error(err))
			}
		})
	}
}
