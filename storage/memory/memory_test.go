package memory

import (
	"testing"

	"github.com/hivekv/hivekv/storage"
	"github.com/hivekv/hivekv/storage/storagetest"
)

func TestMemoryEngine(t *testing.T) {
	storagetest.RunEngineTests(t, "memory", func() storage.Engine {
		return New()
	})
}
