package runtime

import (
	"strconv"
	"time"

	"github.com/iov-one/tokenswap/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects transaction processing statistics.
type Metrics struct {
	txs          *prometheus.CounterVec
	instructions *prometheus.CounterVec
	latency      prometheus.Histogram
}

// NewMetrics creates the ledger metrics and registers them with reg. A nil
// registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		txs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenswap",
			Subsystem: "ledger",
			Name:      "transactions_total",
			Help:      "Processed transactions by outcome.",
		}, []string{"mode", "outcome"}),
		instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenswap",
			Subsystem: "ledger",
			Name:      "instructions_total",
			Help:      "Top level instructions by program and error code.",
		}, []string{"program", "code"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tokenswap",
			Subsystem: "ledger",
			Name:      "submit_duration_seconds",
			Help:      "Time spent executing and committing a transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.txs, m.instructions, m.latency)
	}
	return m
}

func (m *Metrics) observeTx(mode string, err error, start time.Time) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.txs.WithLabelValues(mode, outcome).Inc()
	if mode == modeSubmit {
		m.latency.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) observeInstruction(program string, err error) {
	if m == nil {
		return
	}
	code := errors.CodeOf(err)
	m.instructions.WithLabelValues(program, codeLabel(code)).Inc()
}

func codeLabel(code uint32) string {
	switch code {
	case 0:
		return "ok"
	default:
		return strconv.FormatUint(uint64(code), 10)
	}
}
