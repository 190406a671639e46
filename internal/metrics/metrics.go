// Package metrics exposes Prometheus counters for domain events and a
// collector that reads aggregate counts from the store on each scrape.
package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mdemena/lists-sharing-sub000/internal/store"
)

const namespace = "lists"

var (
	claimsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "claims_total",
		Help:      "Claim and release attempts by action and outcome",
	}, []string{"action", "outcome"})

	invitationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invitation_emails_total",
		Help:      "Invitation emails by outcome",
	}, []string{"outcome"})

	sharesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shares_created_total",
		Help:      "Share rows created by invitations",
	})

	uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Image uploads by outcome",
	}, []string{"outcome"})

	sweptObjectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "swept_objects_total",
		Help:      "Orphaned images deleted by the sweeper",
	})
)

var (
	usersDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "users"),
		"Registered users",
		nil, nil,
	)
	listsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "lists"),
		"Lists",
		nil, nil,
	)
	itemsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "items"),
		"List items by claim state",
		[]string{"state"}, nil,
	)
	sharesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "shares"),
		"List shares by binding state",
		[]string{"state"}, nil,
	)
)

// StatsCollector is a custom Prometheus collector that reads aggregate
// counts from the store on each scrape.
type StatsCollector struct {
	stats   store.StatsReader
	timeout time.Duration
}

// NewStatsCollector creates a collector over stats.
func NewStatsCollector(stats store.StatsReader) *StatsCollector {
	return &StatsCollector{stats: stats, timeout: 5 * time.Second}
}

// Describe sends the metric descriptors to the channel.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- usersDesc
	ch <- listsDesc
	ch <- itemsDesc
	ch <- sharesDesc
}

// Collect queries the store and emits gauges.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	st, err := c.stats.Stats(ctx)
	if err != nil {
		slog.Error("failed to collect stats metrics", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(usersDesc, prometheus.GaugeValue, float64(st.Users))
	ch <- prometheus.MustNewConstMetric(listsDesc, prometheus.GaugeValue, float64(st.Lists))
	ch <- prometheus.MustNewConstMetric(itemsDesc, prometheus.GaugeValue, float64(st.ClaimedItems), "claimed")
	ch <- prometheus.MustNewConstMetric(itemsDesc, prometheus.GaugeValue, float64(st.Items-st.ClaimedItems), "available")
	ch <- prometheus.MustNewConstMetric(sharesDesc, prometheus.GaugeValue, float64(st.PendingShares), "pending")
	ch <- prometheus.MustNewConstMetric(sharesDesc, prometheus.GaugeValue, float64(st.BoundShares), "bound")
}

var initOnce sync.Once

// Init registers the counters and the stats collector with reg.
// Must be called once at startup; later calls are ignored.
func Init(reg prometheus.Registerer, stats store.StatsReader) {
	initOnce.Do(func() {
		reg.MustRegister(
			claimsTotal,
			invitationsTotal,
			sharesCreatedTotal,
			uploadsTotal,
			sweptObjectsTotal,
			NewStatsCollector(stats),
		)
	})
}

// RecordClaim counts a claim ("claim") or release ("release") attempt.
func RecordClaim(action, outcome string) {
	claimsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordInvitation counts an invitation email and the share rows it created.
func RecordInvitation(outcome string, created int) {
	invitationsTotal.WithLabelValues(outcome).Inc()
	sharesCreatedTotal.Add(float64(created))
}

// RecordUpload counts an image upload.
func RecordUpload(outcome string) {
	uploadsTotal.WithLabelValues(outcome).Inc()
}

// RecordSwept counts deleted orphaned images.
func RecordSwept(n int) {
	sweptObjectsTotal.Add(float64(n))
}
