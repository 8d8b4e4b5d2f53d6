package metrics

import (
	"net/http"
	"strconv"

	sdkmath "cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the ledger's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	txs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tournament",
			Name:      "txs_total",
			Help:      "Total number of delivered transactions by type and result code.",
		},
		[]string{"type", "code"},
	)

	ticketsSold = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tournament",
			Name:      "tickets_sold_total",
			Help:      "Total number of tickets bought by players.",
		},
	)

	gapFills = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tournament",
			Name:      "gap_fills_total",
			Help:      "Total number of tournaments closed with gap filler funds.",
		},
	)

	rewardsPaid = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tournament",
			Name:      "rewards_paid_total",
			Help:      "Total number of individual reward payments.",
		},
	)

	blockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tournament",
			Name:      "block_height",
			Help:      "Height of the last finalized block.",
		},
	)

	managerBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tournament",
			Name:      "manager_balance",
			Help:      "Manager account balance in base units (float approximation).",
		},
	)
)

func init() {
	Registry.MustRegister(
		txs,
		ticketsSold,
		gapFills,
		rewardsPaid,
		blockHeight,
		managerBalance,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordTx(txType string, code uint32) {
	if txType == "" {
		txType = "unknown"
	}
	txs.WithLabelValues(txType, strconv.FormatUint(uint64(code), 10)).Inc()
}

func RecordTicketsSold(n uint64) {
	ticketsSold.Add(float64(n))
}

func RecordGapFill() {
	gapFills.Inc()
}

func RecordRewardsPaid(n int) {
	rewardsPaid.Add(float64(n))
}

func SetBlockHeight(h int64) {
	blockHeight.Set(float64(h))
}

func SetManagerBalance(bal sdkmath.Int) {
	if bal.IsNil() {
		managerBalance.Set(0)
		return
	}
	f, _ := bal.BigInt().Float64()
	managerBalance.Set(f)
}
