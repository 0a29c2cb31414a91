package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// This codec follows the same shape as the teacher's hand-rolled binary
// RPC codec: a leading tag byte, then length-prefixed fields written in a
// fixed order determined by the tag. No reflection, no generated code.

// encBuf accumulates encoded bytes. Reused across the Encode* helpers
// instead of reimplementing growth logic for every field type.
type encBuf struct {
	buf []byte
}

func (b *encBuf) byte(v byte) { b.buf = append(b.buf, v) }

func (b *encBuf) u32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *encBuf) u64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *encBuf) bytes(v []byte) {
	b.u32(uint32(len(v)))
	b.buf = append(b.buf, v...)
}

func (b *encBuf) str(v string) { b.bytes([]byte(v)) }

func (b *encBuf) value(v Value) {
	b.byte(byte(v.Kind))
	switch v.Kind {
	case KindString:
		b.str(v.Str)
	case KindBytes:
		b.bytes(v.Bytes)
	case KindInt64:
		b.u64(uint64(v.Int))
	case KindFloat64:
		b.u64(math.Float64bits(v.Float))
	case KindBool:
		if v.Bool {
			b.byte(1)
		} else {
			b.byte(0)
		}
	case KindNone:
		// no payload
	}
}

func (b *encBuf) kvpair(p KvPair) {
	b.str(p.Key)
	b.value(p.Value)
}

func (b *encBuf) strs(ss []string) {
	b.u32(uint32(len(ss)))
	for _, s := range ss {
		b.str(s)
	}
}

func (b *encBuf) values(vs []Value) {
	b.u32(uint32(len(vs)))
	for _, v := range vs {
		b.value(v)
	}
}

func (b *encBuf) kvpairs(ps []KvPair) {
	b.u32(uint32(len(ps)))
	for _, p := range ps {
		b.kvpair(p)
	}
}

// EncodeValue serializes a single Value, reused by disk backends to store
// values in the same format the wire protocol uses - one encoding for both.
func EncodeValue(v Value) []byte {
	b := &encBuf{}
	b.value(v)
	return b.buf
}

// DecodeValue parses a single Value previously produced by EncodeValue.
func DecodeValue(data []byte) (Value, error) {
	d := &decBuf{buf: data}
	v := d.value()
	if d.err != nil {
		return None(), fmt.Errorf("%w: %v", ErrDeserialization, d.err)
	}
	return v, nil
}

// EncodeRequest serializes a CommandRequest to its wire form.
func EncodeRequest(req CommandRequest) []byte {
	b := &encBuf{}
	b.byte(byte(req.Kind))
	switch req.Kind {
	case CmdHget, CmdHexist, CmdHdel:
		b.str(req.Table)
		b.str(req.Key)
	case CmdHgetall:
		b.str(req.Table)
	case CmdHmget, CmdHmexist, CmdHmdel:
		b.str(req.Table)
		b.strs(req.Keys)
	case CmdHset:
		b.str(req.Table)
		b.kvpair(req.Pair)
	case CmdHmset:
		b.str(req.Table)
		b.kvpairs(req.Pairs)
	case CmdSubscribe:
		b.str(req.Topic)
	case CmdUnsubscribe:
		b.str(req.Topic)
		b.u32(req.SubscriptionID)
	case CmdPublish:
		b.str(req.Topic)
		b.values(req.Values)
	}
	return b.buf
}

// EncodeResponse serializes a CommandResponse to its wire form.
func EncodeResponse(resp CommandResponse) []byte {
	b := &encBuf{}
	b.u32(resp.Status)
	b.str(resp.Message)
	b.values(resp.Values)
	b.kvpairs(resp.Pairs)
	return b.buf
}

// decBuf reads fields off a byte slice sequentially, tracking position and
// the first error encountered so callers don't have to check every step.
type decBuf struct {
	buf []byte
	pos int
	err error
}

func (d *decBuf) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf(format, args...)
	}
}

func (d *decBuf) need(n int) bool {
	if d.err != nil {
		return false
	}
	if d.pos+n > len(d.buf) {
		d.fail("wire: unexpected end of data (need %d bytes at pos %d, have %d)", n, d.pos, len(d.buf))
		return false
	}
	return true
}

func (d *decBuf) byte() byte {
	if !d.need(1) {
		return 0
	}
	v := d.buf[d.pos]
	d.pos++
	return v
}

func (d *decBuf) u32() uint32 {
	if !d.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(d.buf[d.pos : d.pos+4])
	d.pos += 4
	return v
}

func (d *decBuf) u64() uint64 {
	if !d.need(8) {
		return 0
	}
	v := binary.BigEndian.Uint64(d.buf[d.pos : d.pos+8])
	d.pos += 8
	return v
}

func (d *decBuf) bytes() []byte {
	n := d.u32()
	if !d.need(int(n)) {
		return nil
	}
	v := make([]byte, n)
	copy(v, d.buf[d.pos:d.pos+int(n)])
	d.pos += int(n)
	return v
}

func (d *decBuf) str() string {
	return string(d.bytes())
}

func (d *decBuf) value() Value {
	kind := Kind(d.byte())
	switch kind {
	case KindString:
		return String(d.str())
	case KindBytes:
		return Bytes(d.bytes())
	case KindInt64:
		return Int64(int64(d.u64()))
	case KindFloat64:
		return Float64(math.Float64frombits(d.u64()))
	case KindBool:
		return Bool(d.byte() != 0)
	case KindNone:
		return None()
	default:
		d.fail("wire: invalid value kind %d", kind)
		return None()
	}
}

func (d *decBuf) kvpair() KvPair {
	key := d.str()
	val := d.value()
	return KvPair{Key: key, Value: val}
}

func (d *decBuf) strs() []string {
	n := d.u32()
	if d.err != nil {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = d.str()
	}
	return out
}

func (d *decBuf) values() []Value {
	n := d.u32()
	if d.err != nil {
		return nil
	}
	out := make([]Value, n)
	for i := range out {
		out[i] = d.value()
	}
	return out
}

func (d *decBuf) kvpairs() []KvPair {
	n := d.u32()
	if d.err != nil {
		return nil
	}
	out := make([]KvPair, n)
	for i := range out {
		out[i] = d.kvpair()
	}
	return out
}

// DecodeRequest parses the wire form of a CommandRequest.
func DecodeRequest(data []byte) (CommandRequest, error) {
	d := &decBuf{buf: data}
	kind := CommandKind(d.byte())
	req := CommandRequest{Kind: kind}
	switch kind {
	case CmdHget, CmdHexist, CmdHdel:
		req.Table = d.str()
		req.Key = d.str()
	case CmdHgetall:
		req.Table = d.str()
	case CmdHmget, CmdHmexist, CmdHmdel:
		req.Table = d.str()
		req.Keys = d.strs()
	case CmdHset:
		req.Table = d.str()
		req.Pair = d.kvpair()
	case CmdHmset:
		req.Table = d.str()
		req.Pairs = d.kvpairs()
	case CmdSubscribe:
		req.Topic = d.str()
	case CmdUnsubscribe:
		req.Topic = d.str()
		req.SubscriptionID = d.u32()
	case CmdPublish:
		req.Topic = d.str()
		req.Values = d.values()
	default:
		d.fail("wire: unknown command kind %d", kind)
	}
	if d.err != nil {
		return CommandRequest{}, fmt.Errorf("%w: %v", ErrDeserialization, d.err)
	}
	return req, nil
}

// DecodeResponse parses the wire form of a CommandResponse.
func DecodeResponse(data []byte) (CommandResponse, error) {
	d := &decBuf{buf: data}
	resp := CommandResponse{
		Status: d.u32(),
	}
	resp.Message = d.str()
	resp.Values = d.values()
	resp.Pairs = d.kvpairs()
	if d.err != nil {
		return CommandResponse{}, fmt.Errorf("%w: %v", ErrDeserialization, d.err)
	}
	return resp, nil
}
