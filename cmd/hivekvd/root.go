package main

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/VictoriaMetrics/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hivekv/hivekv/broker"
	"github.com/hivekv/hivekv/dispatch"
	"github.com/hivekv/hivekv/internal/config"
	"github.com/hivekv/hivekv/internal/obs"
	"github.com/hivekv/hivekv/internal/server"
	"github.com/hivekv/hivekv/transport"
)

// RootCmd is hivekvd's single command: start the server with the
// configuration found on its flags, in the environment (HIVEKV_*), or in a
// .env file, per the teacher's cmd/serve/root.go wiring.
var RootCmd = &cobra.Command{
	Use:     "hivekvd",
	Short:   "Run the hivekv server",
	PreRunE: bindFlags,
	RunE:    run,
}

func init() {
	flags := RootCmd.Flags()
	flags.String("protocol", "tls", "transport protocol (tls, noise, quic)")
	flags.String("addr", "0.0.0.0:4040", "address to listen on")
	flags.String("storage", "memtable", "storage backend (memtable, sled, rocksdb)")
	flags.String("data-dir", "data", "directory for on-disk storage backends")
	flags.String("tls-cert", "", "path to the TLS certificate (PEM)")
	flags.String("tls-key", "", "path to the TLS private key (PEM)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-path", "", "additional log output file")
	flags.String("log-rotation", "", "unused placeholder, kept for config-surface parity")
	flags.Bool("enable-jaeger", false, "tag log lines with trace/span correlation ids")
	flags.Bool("enable-log-file", false, "also write logs to log-path")
	flags.String("metrics-addr", "", "address to serve Prometheus metrics on; empty disables it")
}

func bindFlags(cmd *cobra.Command, _ []string) error {
	return viper.BindPFlags(cmd.Flags())
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := obs.NewLogger(cfg.LogLevel, cfg.LogPath, cfg.EnableLogFile)
	if err != nil {
		return fmt.Errorf("hivekvd: building logger: %w", err)
	}
	defer log.Sync()

	store, err := server.OpenStorage(cfg)
	if err != nil {
		return fmt.Errorf("hivekvd: opening storage: %w", err)
	}
	defer store.Close()

	dispatcher := dispatch.New(store, broker.New())

	acceptor, err := listen(cfg)
	if err != nil {
		return fmt.Errorf("hivekvd: listening: %w", err)
	}
	defer acceptor.Close()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, log)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("hivekvd listening",
		zap.String("addr", cfg.Addr),
		zap.String("protocol", string(cfg.Protocol)),
		zap.String("storage", string(cfg.Storage)),
	)

	srv := server.New(acceptor, dispatcher, log)
	srv.EnableJaeger = cfg.EnableJaeger
	return srv.Serve(ctx)
}

// listen builds the Acceptor named by cfg.Protocol. Noise and QUIC are
// accepted configuration values with no binding yet (see DESIGN.md).
func listen(cfg config.Config) (transport.Acceptor, error) {
	switch cfg.Protocol {
	case config.ProtocolTLS:
		tlsCfg, err := loadTLSConfig(cfg)
		if err != nil {
			return nil, err
		}
		return transport.ListenTLS(cfg.Addr, tlsCfg)
	default:
		return nil, fmt.Errorf("hivekvd: protocol %q: transport not implemented", cfg.Protocol)
	}
}

func loadTLSConfig(cfg config.Config) (*tls.Config, error) {
	if cfg.TLSCertPath == "" || cfg.TLSKeyPath == "" {
		return nil, fmt.Errorf("hivekvd: tls-cert and tls-key are required for protocol tls")
	}
	cert, err := tls.LoadX509KeyPair(cfg.TLSCertPath, cfg.TLSKeyPath)
	if err != nil {
		return nil, fmt.Errorf("hivekvd: loading TLS keypair: %w", err)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}}, nil
}

func serveMetrics(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn("metrics server stopped", zap.Error(err))
	}
}

