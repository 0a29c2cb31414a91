// Package obs carries the repository's ambient observability stack:
// structured logging via go.uber.org/zap, grounded on
// himakhaitan-logkv-store's pkg/logger/logger.go, and counters/histograms
// via github.com/VictoriaMetrics/metrics, a dependency the teacher already
// declared but never wired up.
package obs

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

// Broker-level counters, registered once at package init.
var (
	// BrokerPublishDropped counts publish deliveries dropped because a
	// subscriber's queue was full (the backpressure-drop policy of §4.3).
	BrokerPublishDropped = metrics.NewCounter("hivekv_broker_publish_dropped_total")
	// BrokerUnsubscribes counts successful unsubscribe operations.
	BrokerUnsubscribes = metrics.NewCounter("hivekv_broker_unsubscribes_total")
)

// DispatchCounter returns the request counter for one (command, status)
// pair, creating it on first use. Metric names carry the label values
// directly (VictoriaMetrics/metrics' convention for ad-hoc labeled
// metrics), matching how the teacher's declared-but-unused dependency is
// meant to be driven.
func DispatchCounter(command string, status uint32) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`hivekv_dispatch_requests_total{command=%q,status="%d"}`, command, status))
}

// DispatchDuration returns the dispatch-latency histogram for one command
// kind, creating it on first use.
func DispatchDuration(command string) *metrics.Histogram {
	return metrics.GetOrCreateHistogram(fmt.Sprintf(`hivekv_dispatch_duration_seconds{command=%q}`, command))
}
