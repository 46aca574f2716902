package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PDFMetrics records the behavior of the quotation PDF rendering chain.
type PDFMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	fallback prometheus.Counter
}

// NewPDFMetrics registers the PDF chain metrics on the provided registerer.
func NewPDFMetrics(reg prometheus.Registerer) *PDFMetrics {
	if reg == nil {
		return &PDFMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pdf_render_duration_seconds",
		Help:    "Duration of PDF strategy attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pdf_render_success",
		Help: "Successful PDF strategy renders.",
	}, []string{"strategy"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pdf_render_failure",
		Help: "Failed PDF strategy attempts.",
	}, []string{"strategy"})
	fallback := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pdf_render_chain_exhausted",
		Help: "Times every strategy in the chain failed.",
	})
	reg.MustRegister(duration, success, failure, fallback)
	return &PDFMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		fallback: fallback,
	}
}

// ObserveDuration records the attempt duration for the named strategy.
func (p *PDFMetrics) ObserveDuration(strategy string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(strategy)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named strategy.
func (p *PDFMetrics) IncSuccess(strategy string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(strategy)).Inc()
}

// IncFailure increments the failure counter for the named strategy.
func (p *PDFMetrics) IncFailure(strategy string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(strategy)).Inc()
}

// IncChainExhausted counts a request for which no strategy produced a PDF.
func (p *PDFMetrics) IncChainExhausted() {
	if p == nil || p.fallback == nil {
		return
	}
	p.fallback.Inc()
}

func normalizeLabel(strategy string) string {
	if strategy == "" {
		return "unknown"
	}
	return strategy
}
