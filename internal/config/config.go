// Package config loads the configuration surface common to both binaries:
// transport protocol, listen address, storage backend choice, and
// telemetry sink settings. Grounded on the teacher's cmd/serve/root.go
// viper+cobra+godotenv wiring, generalized from dKV's raft/shard-oriented
// flags to this repository's protocol/storage/telemetry surface.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Protocol identifies the transport an endpoint listens with.
type Protocol string

const (
	ProtocolTLS   Protocol = "tls"
	ProtocolNoise Protocol = "noise"
	ProtocolQUIC  Protocol = "quic"
)

// Backend identifies the storage engine a server boots with.
type Backend string

const (
	BackendMemtable Backend = "memtable"
	BackendSled     Backend = "sled"
	BackendRocksDB  Backend = "rocksdb"
)

// Config is the full configuration surface, consumed once at boot.
type Config struct {
	Protocol Protocol
	Addr     string
	Storage  Backend
	DataDir  string

	TLSCertPath string
	TLSKeyPath  string

	LogLevel      string
	LogPath       string
	LogRotation   string
	EnableJaeger  bool
	EnableLogFile bool

	MetricsAddr string
}

// Load reads configuration from viper (already bound to the calling
// command's flags by the caller) plus environment variables prefixed
// HIVEKV_, after loading .env/.env.local if present.
func Load() (Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("hivekv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	cfg := Config{
		Protocol:      Protocol(viper.GetString("protocol")),
		Addr:          viper.GetString("addr"),
		Storage:       Backend(viper.GetString("storage")),
		DataDir:       viper.GetString("data-dir"),
		TLSCertPath:   viper.GetString("tls-cert"),
		TLSKeyPath:    viper.GetString("tls-key"),
		LogLevel:      viper.GetString("log-level"),
		LogPath:       viper.GetString("log-path"),
		LogRotation:   viper.GetString("log-rotation"),
		EnableJaeger:  viper.GetBool("enable-jaeger"),
		EnableLogFile: viper.GetBool("enable-log-file"),
		MetricsAddr:   viper.GetString("metrics-addr"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Protocol {
	case ProtocolTLS, ProtocolNoise, ProtocolQUIC:
	default:
		return fmt.Errorf("config: unknown protocol %q", c.Protocol)
	}
	switch c.Storage {
	case BackendMemtable, BackendSled, BackendRocksDB:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage)
	}
	if c.Addr == "" {
		return fmt.Errorf("config: addr must not be empty")
	}
	return nil
}
