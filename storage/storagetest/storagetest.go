// Package storagetest provides a shared conformance suite run against
// every storage.Engine implementation, mirroring the teacher's
// lib/db/testing.RunKVDBTests pattern: one exported entry point, nested
// t.Run subtests, small focused test functions underneath.
package storagetest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hivekv/hivekv/storage"
	"github.com/hivekv/hivekv/wire"
)

// Factory creates a fresh, empty storage.Engine instance for one subtest.
type Factory func() storage.Engine

// RunEngineTests runs the full storage contract suite against an engine
// built by factory, under a subtest named name.
func RunEngineTests(t *testing.T, name string, factory Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("GetOnMissingKeyReturnsNone", func(t *testing.T) {
			testGetMissing(t, factory())
		})
		t.Run("SetThenGetObservesValue", func(t *testing.T) {
			testSetThenGet(t, factory())
		})
		t.Run("SetReturnsPriorValue", func(t *testing.T) {
			testSetReturnsPrior(t, factory())
		})
		t.Run("Contains", func(t *testing.T) {
			testContains(t, factory())
		})
		t.Run("DelReturnsPriorAndRemoves", func(t *testing.T) {
			testDel(t, factory())
		})
		t.Run("DelOnMissingKeyDoesNotError", func(t *testing.T) {
			testDelMissing(t, factory())
		})
		t.Run("GetIterOnUnknownTableIsEmpty", func(t *testing.T) {
			testGetIterUnknownTable(t, factory())
		})
		t.Run("GetIterSnapshotsCurrentEntries", func(t *testing.T) {
			testGetIterSnapshot(t, factory())
		})
		t.Run("TablesAreIndependent", func(t *testing.T) {
			testTableIsolation(t, factory())
		})
	})
}

func testGetMissing(t *testing.T, e storage.Engine) {
	defer e.Close()
	v, err := e.Get("t", "missing")
	require.NoError(t, err)
	require.True(t, v.IsNone())
}

func testSetThenGet(t *testing.T, e storage.Engine) {
	defer e.Close()
	_, err := e.Set("t", "k", wire.String("v"))
	require.NoError(t, err)

	v, err := e.Get("t", "k")
	require.NoError(t, err)
	require.True(t, v.Equal(wire.String("v")))
}

func testSetReturnsPrior(t *testing.T, e storage.Engine) {
	defer e.Close()
	prior, err := e.Set("t", "k", wire.Int64(1))
	require.NoError(t, err)
	require.True(t, prior.IsNone())

	prior, err = e.Set("t", "k", wire.Int64(2))
	require.NoError(t, err)
	require.True(t, prior.Equal(wire.Int64(1)))
}

func testContains(t *testing.T, e storage.Engine) {
	defer e.Close()
	ok, err := e.Contains("t", "k")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = e.Set("t", "k", wire.Bool(true))
	require.NoError(t, err)

	ok, err = e.Contains("t", "k")
	require.NoError(t, err)
	require.True(t, ok)
}

func testDel(t *testing.T, e storage.Engine) {
	defer e.Close()
	_, err := e.Set("t", "k", wire.Float64(1.5))
	require.NoError(t, err)

	prior, err := e.Del("t", "k")
	require.NoError(t, err)
	require.True(t, prior.Equal(wire.Float64(1.5)))

	ok, err := e.Contains("t", "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func testDelMissing(t *testing.T, e storage.Engine) {
	defer e.Close()
	prior, err := e.Del("t", "never-set")
	require.NoError(t, err)
	require.True(t, prior.IsNone())
}

func testGetIterUnknownTable(t *testing.T, e storage.Engine) {
	defer e.Close()
	pairs, err := e.GetIter("nope")
	require.NoError(t, err)
	require.Empty(t, pairs)
}

func testGetIterSnapshot(t *testing.T, e storage.Engine) {
	defer e.Close()
	_, err := e.Set("t", "a", wire.Int64(1))
	require.NoError(t, err)
	_, err = e.Set("t", "b", wire.Int64(2))
	require.NoError(t, err)

	pairs, err := e.GetIter("t")
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	byKey := map[string]wire.Value{}
	for _, p := range pairs {
		byKey[p.Key] = p.Value
	}
	require.True(t, byKey["a"].Equal(wire.Int64(1)))
	require.True(t, byKey["b"].Equal(wire.Int64(2)))
}

func testTableIsolation(t *testing.T, e storage.Engine) {
	defer e.Close()
	_, err := e.Set("t1", "k", wire.String("from-t1"))
	require.NoError(t, err)

	v, err := e.Get("t2", "k")
	require.NoError(t, err)
	require.True(t, v.IsNone())
}
