package catalog

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeFound    = "found"
	outcomeNotFound = "not_found"
)

type Metrics struct {
	Titles          prometheus.Gauge
	Searches        *prometheus.CounterVec
	CategoryFilters prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Titles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_titles_loaded",
			Help: "Titles held by the in-memory catalog",
		}),
		Searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_searches_total",
				Help: "Keyword searches by outcome",
			},
			[]string{"outcome"},
		),
		CategoryFilters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_category_filters_total",
			Help: "Category filter queries",
		}),
	}

	reg.MustRegister(m.Titles, m.Searches, m.CategoryFilters)
	return m
}

func (m *Metrics) observeSearch(found bool) {
	if m == nil {
		return
	}
	outcome := outcomeNotFound
	if found {
		outcome = outcomeFound
	}
	m.Searches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeFilter() {
	if m == nil {
		return
	}
	m.CategoryFilters.Inc()
}
