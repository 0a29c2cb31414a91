package pebbleengine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hivekv/hivekv/storage"
	"github.com/hivekv/hivekv/storage/storagetest"
)

func TestPebbleEngine(t *testing.T) {
	storagetest.RunEngineTests(t, "pebble", func() storage.Engine {
		e, err := Open(t.TempDir())
		require.NoError(t, err)
		return e
	})
}
