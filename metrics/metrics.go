package metrics

import (
	"net/http"
	"time"

	"github.com/Seklfreak/robyul-starboard/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StarboardReactions counts handled starboard emoji reactions by action (add, remove)
	StarboardReactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robyul_starboard_reactions_total",
		Help: "Number of starboard emoji reactions handled",
	}, []string{"action"})

	// StarboardPromotions counts messages posted to the review queue
	StarboardPromotions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "robyul_starboard_promotions_total",
		Help: "Number of messages promoted to the review queue",
	})

	// StarboardReviews counts review outcomes (accepted, denied, expired)
	StarboardReviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robyul_starboard_reviews_total",
		Help: "Number of review queue outcomes",
	}, []string{"outcome"})

	// StarboardSuppressedErrors counts errors that were logged and dropped, by operation
	StarboardSuppressedErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robyul_starboard_suppressed_errors_total",
		Help: "Number of starboard errors logged and dropped",
	}, []string{"operation"})

	// Uptime stores the timestamp of the bot's boot
	Uptime = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "robyul_boot_timestamp_seconds",
		Help: "Unix timestamp of the bot's boot",
	})
)

// Init serves /metrics on address
func Init(address string) {
	Uptime.Set(float64(time.Now().Unix()))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	cache.GetLogger().WithField("module", "metrics").Infof("listening on %s", address)
	go func() {
		err := http.ListenAndServe(address, mux)
		if err != nil {
			cache.GetLogger().WithField("module", "metrics").Errorf("metrics server stopped: %s", err.Error())
		}
	}()
}
