package aadhaar

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts uploads and reviews.
type Metrics struct {
	uploads     *prometheus.CounterVec
	uploadBytes prometheus.Histogram
	reviews     *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. A nil reg uses the default
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aadhaar",
			Name:      "uploads_total",
			Help:      "Aadhaar document uploads by outcome",
		}, []string{"outcome"}),

		uploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aadhaar",
			Name:      "upload_size_bytes",
			Help:      "Size of accepted Aadhaar documents",
			Buckets:   []float64{64 << 10, 256 << 10, 1 << 20, 2 << 20, 5 << 20},
		}),

		reviews: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aadhaar",
			Name:      "reviews_total",
			Help:      "Reviewer decisions by resulting status",
		}, []string{"status"}),
	}
}

func (m *Metrics) uploadAccepted(size int64) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues("accepted").Inc()
	m.uploadBytes.Observe(float64(size))
}

func (m *Metrics) uploadRejected() {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues("rejected").Inc()
}

func (m *Metrics) uploadFailed() {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues("error").Inc()
}

func (m *Metrics) reviewed(status string) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(status).Inc()
}
