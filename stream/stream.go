// Package stream implements the stream service (component E): it owns one
// logical substream, drives decode → dispatch → encode, and for a
// Subscribe request keeps the substream open and drains the broker queue
// instead of reading further requests (a subscription holds its substream
// open until unsubscribed or disconnected).
//
// Grounded on the teacher's rpc/transport/base/server.go handleConnection
// loop, generalized from "one request, one response, next request" to
// "one substream, one request, either one response or a response tail".
package stream

import (
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/hivekv/hivekv/broker"
	"github.com/hivekv/hivekv/dispatch"
	"github.com/hivekv/hivekv/transport"
	"github.com/hivekv/hivekv/wire"
)

// Service owns one substream's lifetime: decode one request, dispatch it,
// write back its response(s), then either loop (ordinary commands) or
// block draining a subscription (Subscribe) until the substream closes.
type Service struct {
	substream  transport.Substream
	dispatcher *dispatch.Dispatcher
	log        *zap.Logger

	owned []*broker.Subscriber
}

// New builds a stream Service for one accepted substream.
func New(substream transport.Substream, dispatcher *dispatch.Dispatcher, log *zap.Logger) *Service {
	return &Service{substream: substream, dispatcher: dispatcher, log: log}
}

// Run drives the decode-dispatch-encode loop until the substream hits EOF
// or a frame-level error, then unsubscribes everything this stream still
// owns. It never returns an error for a clean EOF.
func (s *Service) Run() error {
	defer s.teardown()

	for {
		body, err := wire.DecodeFrame(s.substream)
		if err != nil {
			if errors.Is(err, wire.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				return nil
			}
			// A frame that can't even be decoded closes the substream -
			// there's no CommandRequest to attach a 422 response to.
			s.log.Warn("frame decode failed, closing substream", zap.Error(err))
			return err
		}

		req, err := wire.DecodeRequest(body)
		if err != nil {
			if werr := s.writeResponse(wire.CommandResponse{Status: 422, Message: err.Error()}); werr != nil {
				return werr
			}
			continue
		}

		if err := s.handle(req); err != nil {
			return err
		}

		if req.Kind == wire.CmdSubscribe {
			// A subscription holds the substream open for its queue's
			// lifetime; no further requests are read on it.
			return nil
		}
	}
}

func (s *Service) handle(req wire.CommandRequest) error {
	start := time.Now()
	result := s.dispatcher.Dispatch(req)

	status := result.Response.Status
	if result.Subscription != nil {
		status = 200
	}
	s.log.Info("dispatch",
		zap.String("command", req.Kind.String()),
		zap.String("table", req.Table),
		zap.Uint32("status", status),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if result.Subscription != nil {
		s.owned = append(s.owned, result.Subscription)
		return s.drainSubscription(result.Subscription)
	}

	return s.writeResponse(result.Response)
}

// drainSubscription writes every response the broker enqueues for sub
// until Done is closed (unsubscribe, or broker shutdown), or the substream
// itself goes away. A subscribed substream carries no further requests,
// but its read side still needs watching - otherwise a client that
// vanishes without unsubscribing would leave this goroutine (and its
// subscription) parked forever on an empty queue.
//
// Queue itself is never closed - the broker signals end-of-stream on Done
// instead - so once Done fires this still drains whatever was already
// buffered on Queue before returning, matching what a closed-queue read
// loop would have delivered.
func (s *Service) drainSubscription(sub *broker.Subscriber) error {
	peerGone := make(chan struct{})
	go func() {
		defer close(peerGone)
		var buf [1]byte
		_, _ = s.substream.Read(buf[:])
	}()

	for {
		select {
		case resp := <-sub.Queue:
			if err := s.writeResponse(resp); err != nil {
				return err
			}
		case <-sub.Done:
			for {
				select {
				case resp := <-sub.Queue:
					if err := s.writeResponse(resp); err != nil {
						return err
					}
				default:
					return nil
				}
			}
		case <-peerGone:
			return nil
		}
	}
}

func (s *Service) writeResponse(resp wire.CommandResponse) error {
	frame, err := wire.EncodeFrame(wire.EncodeResponse(resp), wire.AlgoZstd)
	if err != nil {
		return err
	}
	_, err = s.substream.Write(frame)
	return err
}

// teardown unsubscribes every subscription this stream still owns, per
// invariant 6: each owned id is unregistered before any later publish on
// its topic completes.
func (s *Service) teardown() {
	if s.dispatcher.Broker != nil {
		s.dispatcher.Broker.UnsubscribeAll(s.owned)
	}
	_ = s.substream.Close()
}
