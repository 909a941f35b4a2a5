package metrics

import (
	"math/big"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "raffle_entries_total",
			Help: "Total number of recorded entries",
		},
	)

	DrawRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raffle_draw_requests_total",
			Help: "Total number of randomness requests issued",
		},
		[]string{"kind"},
	)

	DrawsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "raffle_draws_total",
			Help: "Total number of completed draws",
		},
	)

	FulfillmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raffle_fulfillments_total",
			Help: "Total number of randomness fulfillments received",
		},
		[]string{"status"},
	)

	Players = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "raffle_players",
			Help: "Number of entries in the current round",
		},
	)

	CollectedValue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "raffle_collected_value_wei",
			Help: "Value collected in the current round",
		},
	)

	State = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "raffle_state",
			Help: "Current raffle state (1 open, 2 calculating)",
		},
	)

	LastPrize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "raffle_last_prize_wei",
			Help: "Prize paid out by the last draw",
		},
	)
)

// ObserveRaffle refreshes the gauges from the current raffle state.
func ObserveRaffle(raffle *domain.Raffle) {
	if raffle == nil {
		return
	}
	Players.Set(float64(len(raffle.Players)))
	CollectedValue.Set(toFloat(raffle.CollectedValue))
	State.Set(float64(raffle.State))
}

// ObserveEvents updates the counters for a batch of committed events.
func ObserveEvents(events []domain.RaffleEvent) {
	for _, event := range events {
		switch e := event.(type) {
		case domain.EntryRecorded:
			EntriesTotal.Inc()
		case domain.ClosingRequested:
			DrawRequestsTotal.WithLabelValues("close").Inc()
		case domain.DrawRequestReissued:
			DrawRequestsTotal.WithLabelValues("reissue").Inc()
		case domain.WinnerSelected:
			DrawsTotal.Inc()
			LastPrize.Set(toFloat(e.Prize))
		}
	}
}

func ObserveFulfillment(err error) {
	status := "accepted"
	if err != nil {
		status = "rejected"
	}
	FulfillmentsTotal.WithLabelValues(status).Inc()
}

func toFloat(amount *big.Int) float64 {
	if amount == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(amount).Float64()
	return f
}
