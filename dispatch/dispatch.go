// Package dispatch maps a decoded wire.CommandRequest to storage or broker
// calls and shapes the resulting wire.CommandResponse(s), per the
// dispatcher contract: status 200 success, 422 malformed, 404 only for
// Unsubscribe of an unknown (topic, id), 500 on backend failure.
//
// Grounded on the teacher's rpc/server/adapter_istore.go (switch on the
// request's tag, one case per command, delegating to the store) and on
// original_source/src/service/mod.rs's dispatch/dispatch_stream split
// between single-response and stream-producing commands.
package dispatch

import (
	"time"

	"github.com/hivekv/hivekv/broker"
	"github.com/hivekv/hivekv/internal/errs"
	"github.com/hivekv/hivekv/internal/obs"
	"github.com/hivekv/hivekv/storage"
	"github.com/hivekv/hivekv/wire"
)

// Dispatcher ties a storage.Engine and a broker.Broker together, per the
// one-shared-handle-per-server design note - no runtime plugin loading,
// no per-request construction.
type Dispatcher struct {
	Storage storage.Engine
	Broker  *broker.Broker
}

// New builds a Dispatcher over the given storage engine and broker.
func New(store storage.Engine, br *broker.Broker) *Dispatcher {
	return &Dispatcher{Storage: store, Broker: br}
}

// Result is what Dispatch produces: either exactly one response (the
// common case) or, for Subscribe, a queue of responses the caller drains
// until it closes - the "lazy finite sequence of responses" design note
// models a single response as Subscription == nil.
type Result struct {
	Response     wire.CommandResponse
	Subscription *broker.Subscriber // set only for a successful Subscribe
}

// Dispatch resolves one request to a Result. It never panics; every
// failure mode becomes a status code in the returned response, except
// Subscribe's stream, which is represented by Subscription.
func (d *Dispatcher) Dispatch(req wire.CommandRequest) Result {
	start := time.Now()
	resp, sub := d.dispatch(req)
	obs.DispatchCounter(req.Kind.String(), resp.Status).Inc()
	obs.DispatchDuration(req.Kind.String()).UpdateDuration(start)
	return Result{Response: resp, Subscription: sub}
}

func (d *Dispatcher) dispatch(req wire.CommandRequest) (wire.CommandResponse, *broker.Subscriber) {
	switch req.Kind {
	case wire.CmdHget:
		return d.hget(req), nil
	case wire.CmdHgetall:
		return d.hgetall(req), nil
	case wire.CmdHmget:
		return d.hmget(req), nil
	case wire.CmdHset:
		return d.hset(req), nil
	case wire.CmdHmset:
		return d.hmset(req), nil
	case wire.CmdHdel:
		return d.hdel(req), nil
	case wire.CmdHmdel:
		return d.hmdel(req), nil
	case wire.CmdHexist:
		return d.hexist(req), nil
	case wire.CmdHmexist:
		return d.hmexist(req), nil
	case wire.CmdSubscribe:
		return d.subscribe(req)
	case wire.CmdUnsubscribe:
		return d.unsubscribe(req), nil
	case wire.CmdPublish:
		return d.publish(req), nil
	default:
		return errResp(errs.Malformed("unknown command kind %d", req.Kind)), nil
	}
}

// errResp turns an *errs.Error (or any error) into a response using the
// taxonomy's status mapping.
func errResp(err error) wire.CommandResponse {
	return wire.CommandResponse{Status: errs.StatusFor(err), Message: err.Error()}
}

func requireTable(table string) error {
	if table == "" {
		return errs.Malformed("table must not be empty")
	}
	return nil
}

func (d *Dispatcher) hget(req wire.CommandRequest) wire.CommandResponse {
	if err := requireTable(req.Table); err != nil {
		return errResp(err)
	}
	v, err := d.Storage.Get(req.Table, req.Key)
	if err != nil {
		return errResp(err)
	}
	// Missing key returns 200 with a None value, never 404.
	return wire.Ok([]wire.Value{v}, nil)
}

func (d *Dispatcher) hgetall(req wire.CommandRequest) wire.CommandResponse {
	if err := requireTable(req.Table); err != nil {
		return errResp(err)
	}
	pairs, err := d.Storage.GetIter(req.Table)
	if err != nil {
		return errResp(err)
	}
	// Unknown table yields empty pairs, status 200 - same lenient policy
	// as Hget's missing-key case.
	return wire.Ok(nil, pairs)
}

func (d *Dispatcher) hmget(req wire.CommandRequest) wire.CommandResponse {
	if err := requireTable(req.Table); err != nil {
		return errResp(err)
	}
	values := make([]wire.Value, len(req.Keys))
	for i, k := range req.Keys {
		v, err := d.Storage.Get(req.Table, k)
		if err != nil {
			return errResp(err)
		}
		values[i] = v
	}
	return wire.Ok(values, nil)
}

func (d *Dispatcher) hset(req wire.CommandRequest) wire.CommandResponse {
	if err := requireTable(req.Table); err != nil {
		return errResp(err)
	}
	prior, err := d.Storage.Set(req.Table, req.Pair.Key, req.Pair.Value)
	if err != nil {
		return errResp(err)
	}
	return wire.Ok([]wire.Value{prior}, nil)
}

func (d *Dispatcher) hmset(req wire.CommandRequest) wire.CommandResponse {
	if err := requireTable(req.Table); err != nil {
		return errResp(err)
	}
	values := make([]wire.Value, len(req.Pairs))
	for i, p := range req.Pairs {
		prior, err := d.Storage.Set(req.Table, p.Key, p.Value)
		if err != nil {
			return errResp(err)
		}
		values[i] = prior
	}
	return wire.Ok(values, nil)
}

func (d *Dispatcher) hdel(req wire.CommandRequest) wire.CommandResponse {
	if err := requireTable(req.Table); err != nil {
		return errResp(err)
	}
	prior, err := d.Storage.Del(req.Table, req.Key)
	if err != nil {
		return errResp(err)
	}
	return wire.Ok([]wire.Value{prior}, nil)
}

func (d *Dispatcher) hmdel(req wire.CommandRequest) wire.CommandResponse {
	if err := requireTable(req.Table); err != nil {
		return errResp(err)
	}
	values := make([]wire.Value, len(req.Keys))
	for i, k := range req.Keys {
		prior, err := d.Storage.Del(req.Table, k)
		if err != nil {
			return errResp(err)
		}
		values[i] = prior
	}
	return wire.Ok(values, nil)
}

func (d *Dispatcher) hexist(req wire.CommandRequest) wire.CommandResponse {
	if err := requireTable(req.Table); err != nil {
		return errResp(err)
	}
	ok, err := d.Storage.Contains(req.Table, req.Key)
	if err != nil {
		return errResp(err)
	}
	return wire.Ok([]wire.Value{wire.Bool(ok)}, nil)
}

func (d *Dispatcher) hmexist(req wire.CommandRequest) wire.CommandResponse {
	if err := requireTable(req.Table); err != nil {
		return errResp(err)
	}
	values := make([]wire.Value, len(req.Keys))
	for i, k := range req.Keys {
		ok, err := d.Storage.Contains(req.Table, k)
		if err != nil {
			return errResp(err)
		}
		values[i] = wire.Bool(ok)
	}
	return wire.Ok(values, nil)
}

func (d *Dispatcher) subscribe(req wire.CommandRequest) (wire.CommandResponse, *broker.Subscriber) {
	if req.Topic == "" {
		return errResp(errs.Malformed("topic must not be empty")), nil
	}
	sub, err := d.Broker.Subscribe(req.Topic)
	if err != nil {
		return errResp(err), nil
	}
	// The welcome response is already queued by the broker; the stream
	// service drains Subscription.Queue instead of using this Response.
	return wire.CommandResponse{}, sub
}

func (d *Dispatcher) unsubscribe(req wire.CommandRequest) wire.CommandResponse {
	if req.Topic == "" {
		return errResp(errs.Malformed("topic must not be empty"))
	}
	if err := d.Broker.Unsubscribe(req.Topic, req.SubscriptionID); err != nil {
		return errResp(err)
	}
	return wire.Ok(nil, nil)
}

func (d *Dispatcher) publish(req wire.CommandRequest) wire.CommandResponse {
	if err := d.Broker.Publish(req.Topic, req.Values); err != nil {
		return errResp(err)
	}
	return wire.Ok(nil, nil)
}
