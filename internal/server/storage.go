package server

import (
	"fmt"

	"github.com/hivekv/hivekv/internal/config"
	"github.com/hivekv/hivekv/storage"
	"github.com/hivekv/hivekv/storage/memory"
	"github.com/hivekv/hivekv/storage/pebbleengine"
	"github.com/hivekv/hivekv/storage/rocksengine"
)

// OpenStorage selects and opens the storage.Engine named by cfg.Storage.
// memtable needs no directory; sled and rocksdb open (creating if
// missing) a database under cfg.DataDir.
func OpenStorage(cfg config.Config) (storage.Engine, error) {
	switch cfg.Storage {
	case config.BackendMemtable:
		return memory.New(), nil
	case config.BackendSled:
		return pebbleengine.Open(cfg.DataDir)
	case config.BackendRocksDB:
		return rocksengine.Open(cfg.DataDir)
	default:
		return nil, fmt.Errorf("server: unknown storage backend %q", cfg.Storage)
	}
}
