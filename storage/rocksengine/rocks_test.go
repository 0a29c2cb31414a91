package rocksengine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hivekv/hivekv/storage"
	"github.com/hivekv/hivekv/storage/storagetest"
)

func TestRocksEngine(t *testing.T) {
	storagetest.RunEngineTests(t, "rockyardkv", func() storage.Engine {
		e, err := Open(t.TempDir())
		require.NoError(t, err)
		return e
	})
}
