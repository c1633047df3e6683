package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type ExchangeMetrics struct {
	tradesExecuted *prometheus.CounterVec
	faucetMints    *prometheus.CounterVec
	rewardsMinted  prometheus.Counter
	rewardSupply   prometheus.Gauge
}

var (
	exchangeOnce     sync.Once
	exchangeRegistry *ExchangeMetrics
)

func Exchange() *ExchangeMetrics {
	exchangeOnce.Do(func() {
		exchangeRegistry = &ExchangeMetrics{
			tradesExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "dex_trades_total",
				Help: "Count of trade requests by outcome.",
			}, []string{"outcome"}),
			faucetMints: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "dex_faucet_mints_total",
				Help: "Count of faucet requests by asset and result.",
			}, []string{"asset", "result"}),
			rewardsMinted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "dex_rewards_minted_total",
				Help: "Count of reward units issued on qualifying trades.",
			}),
			rewardSupply: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "dex_reward_units_issued",
				Help: "Total reward units ever issued by the ledger.",
			}),
		}
		prometheus.MustRegister(
			exchangeRegistry.tradesExecuted,
			exchangeRegistry.faucetMints,
			exchangeRegistry.rewardsMinted,
			exchangeRegistry.rewardSupply,
		)
	})
	return exchangeRegistry
}

func (m *ExchangeMetrics) ObserveTrade(outcome string) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.tradesExecuted.WithLabelValues(outcome).Inc()
}

func (m *ExchangeMetrics) ObserveFaucetMint(asset, result string) {
	if m == nil {
		return
	}
	if asset == "" {
		asset = "unknown"
	}
	if result == "" {
		result = "unknown"
	}
	m.faucetMints.WithLabelValues(asset, result).Inc()
}

func (m *ExchangeMetrics) ObserveRewardMinted() {
	if m == nil {
		return
	}
	m.rewardsMinted.Inc()
}

func (m *ExchangeMetrics) SetRewardSupply(units uint64) {
	if m == nil {
		return
	}
	m.rewardSupply.Set(float64(units))
}
