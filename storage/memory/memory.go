// Package memory implements the storage.Engine contract over concurrent
// in-process maps: one table-name map to a per-table concurrent key map.
// Grounded on the teacher's use of github.com/puzpuzpuz/xsync/v3 for its
// sharded, lock-free concurrent maps, without the TTL/expiry/write-index
// machinery the teacher's maple engine carries - this repository has no
// notion of expiring keys.
package memory

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/hivekv/hivekv/storage"
	"github.com/hivekv/hivekv/wire"
)

type table = *xsync.MapOf[string, wire.Value]

// Engine is an in-memory storage.Engine. The zero value is not usable;
// construct with New.
type Engine struct {
	tables *xsync.MapOf[string, table]
}

// New creates an empty memory engine.
func New() *Engine {
	return &Engine{tables: xsync.NewMapOf[string, table]()}
}

var _ storage.Engine = (*Engine)(nil)

func (e *Engine) loadTable(name string) (table, bool) {
	return e.tables.Load(name)
}

func (e *Engine) getOrCreateTable(name string) table {
	t, _ := e.tables.LoadOrStore(name, xsync.NewMapOf[string, wire.Value]())
	return t
}

func (e *Engine) Get(tableName, key string) (wire.Value, error) {
	t, ok := e.loadTable(tableName)
	if !ok {
		return wire.None(), nil
	}
	v, ok := t.Load(key)
	if !ok {
		return wire.None(), nil
	}
	return v, nil
}

func (e *Engine) Set(tableName, key string, value wire.Value) (wire.Value, error) {
	t := e.getOrCreateTable(tableName)
	prior := wire.None()
	t.Compute(key, func(oldValue wire.Value, loaded bool) (wire.Value, bool) {
		if loaded {
			prior = oldValue
		}
		return value, false
	})
	return prior, nil
}

func (e *Engine) Contains(tableName, key string) (bool, error) {
	t, ok := e.loadTable(tableName)
	if !ok {
		return false, nil
	}
	_, ok = t.Load(key)
	return ok, nil
}

func (e *Engine) Del(tableName, key string) (wire.Value, error) {
	t, ok := e.loadTable(tableName)
	if !ok {
		return wire.None(), nil
	}
	prior := wire.None()
	t.Compute(key, func(oldValue wire.Value, loaded bool) (wire.Value, bool) {
		if loaded {
			prior = oldValue
		}
		return wire.None(), true
	})
	return prior, nil
}

func (e *Engine) GetIter(tableName string) ([]wire.KvPair, error) {
	t, ok := e.loadTable(tableName)
	if !ok {
		return []wire.KvPair{}, nil
	}
	pairs := make([]wire.KvPair, 0, t.Size())
	t.Range(func(key string, value wire.Value) bool {
		pairs = append(pairs, wire.KvPair{Key: key, Value: value})
		return true
	})
	return pairs, nil
}

func (e *Engine) Close() error { return nil }
