// Package pebbleengine implements storage.Engine over a single
// github.com/cockroachdb/pebble database handle, keyed by a "<table>:<key>"
// prefixed keyspace. Grounded on original_source's sled-backed storage
// layer (get_full_key/get_table_prefix/scan_prefix), with pebble standing
// in for sled as the closest idiomatic-Go embedded LSM store - pebble was
// already present in the teacher's dependency graph (pulled in
// transitively by dragonboat) and is promoted to a direct dependency here.
package pebbleengine

import (
	"bytes"
	"errors"

	"github.com/cockroachdb/pebble"

	"github.com/hivekv/hivekv/internal/errs"
	"github.com/hivekv/hivekv/storage"
	"github.com/hivekv/hivekv/wire"
)

// Engine is a pebble-backed storage.Engine.
type Engine struct {
	db *pebble.DB
}

var _ storage.Engine = (*Engine)(nil)

// Open opens (creating if missing) a pebble database at dir.
func Open(dir string) (*Engine, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errs.Backend("pebbleengine: open %s: %v", dir, err)
	}
	return &Engine{db: db}, nil
}

func fullKey(table, key string) []byte {
	k := make([]byte, 0, len(table)+1+len(key))
	k = append(k, table...)
	k = append(k, ':')
	k = append(k, key...)
	return k
}

func tablePrefix(table string) []byte {
	p := make([]byte, 0, len(table)+1)
	p = append(p, table...)
	p = append(p, ':')
	return p
}

// prefixUpperBound returns the smallest key that sorts after every key
// starting with prefix, for use as an IterOptions.UpperBound.
func prefixUpperBound(prefix []byte) []byte {
	upper := make([]byte, len(prefix))
	copy(upper, prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return upper[:i+1]
		}
	}
	return nil // prefix was all 0xff bytes; unbounded above
}

func (e *Engine) Get(table, key string) (wire.Value, error) {
	data, closer, err := e.db.Get(fullKey(table, key))
	if errors.Is(err, pebble.ErrNotFound) {
		return wire.None(), nil
	}
	if err != nil {
		return wire.None(), errs.Backend("pebbleengine: get: %v", err)
	}
	defer closer.Close()
	v, err := wire.DecodeValue(data)
	if err != nil {
		return wire.None(), errs.Backend("pebbleengine: decode value: %v", err)
	}
	return v, nil
}

func (e *Engine) Set(table, key string, value wire.Value) (wire.Value, error) {
	prior, err := e.Get(table, key)
	if err != nil {
		return wire.None(), err
	}
	if err := e.db.Set(fullKey(table, key), wire.EncodeValue(value), nil); err != nil {
		return wire.None(), errs.Backend("pebbleengine: set: %v", err)
	}
	return prior, nil
}

func (e *Engine) Contains(table, key string) (bool, error) {
	_, closer, err := e.db.Get(fullKey(table, key))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errs.Backend("pebbleengine: contains: %v", err)
	}
	defer closer.Close()
	return true, nil
}

func (e *Engine) Del(table, key string) (wire.Value, error) {
	prior, err := e.Get(table, key)
	if err != nil {
		return wire.None(), err
	}
	if err := e.db.Delete(fullKey(table, key), nil); err != nil {
		return wire.None(), errs.Backend("pebbleengine: delete: %v", err)
	}
	return prior, nil
}

func (e *Engine) GetIter(table string) ([]wire.KvPair, error) {
	prefix := tablePrefix(table)
	iter, err := e.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, errs.Backend("pebbleengine: new iterator: %v", err)
	}
	defer iter.Close()

	pairs := []wire.KvPair{}
	for iter.First(); iter.Valid(); iter.Next() {
		key := bytes.TrimPrefix(iter.Key(), prefix)
		v, err := wire.DecodeValue(iter.Value())
		if err != nil {
			return nil, errs.Backend("pebbleengine: decode value during scan: %v", err)
		}
		pairs = append(pairs, wire.KvPair{Key: string(key), Value: v})
	}
	if err := iter.Error(); err != nil {
		return nil, errs.Backend("pebbleengine: iteration error: %v", err)
	}
	return pairs, nil
}

func (e *Engine) Close() error {
	if err := e.db.Close(); err != nil {
		return errs.Backend("pebbleengine: close: %v", err)
	}
	return nil
}
