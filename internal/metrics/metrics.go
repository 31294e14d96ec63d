// Package metrics exposes crawl pipeline counters over Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the slice of metrics the crawl pipeline reports. Nop satisfies
// it for callers that run without a metrics endpoint.
type Recorder interface {
	RunFinished(status string)
	PostingsIngested(found, fresh int)
	ObserveFetch(owner string, d time.Duration)
}

// Prometheus collects pipeline metrics into its own registry.
type Prometheus struct {
	registry      *prometheus.Registry
	runsTotal     *prometheus.CounterVec
	postingsFound prometheus.Counter
	postingsNew   prometheus.Counter
	fetchDuration *prometheus.HistogramVec
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "internradar_crawl_runs_total",
			Help: "Crawl runs finished, labeled by terminal status.",
		}, []string{"status"}),
		postingsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "internradar_postings_found_total",
			Help: "Valid candidates seen across all crawl runs.",
		}),
		postingsNew: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "internradar_postings_new_total",
			Help: "Postings created across all crawl runs.",
		}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "internradar_fetch_duration_seconds",
			Help:    "Wall time of source fetches per owner.",
			Buckets: prometheus.DefBuckets,
		}, []string{"owner"}),
	}
	p.registry.MustRegister(p.runsTotal, p.postingsFound, p.postingsNew, p.fetchDuration)
	return p
}

func (p *Prometheus) RunFinished(status string) {
	p.runsTotal.WithLabelValues(status).Inc()
}

func (p *Prometheus) PostingsIngested(found, fresh int) {
	p.postingsFound.Add(float64(found))
	p.postingsNew.Add(float64(fresh))
}

func (p *Prometheus) ObserveFetch(owner string, d time.Duration) {
	p.fetchDuration.WithLabelValues(owner).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Nop discards all observations.
type Nop struct{}

func (Nop) RunFinished(string) {}

func (Nop) PostingsIngested(int, int) {}

func (Nop) ObserveFetch(string, time.Duration) {}
