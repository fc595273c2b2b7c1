// Package metrics はエンジンの結果を Prometheus に公開します。
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/usecase"
)

// outcome ラベルの値
const (
	OutcomeSuccess          = "success"
	OutcomeFailure          = "failure"
	OutcomeAlreadyConfirmed = "already_confirmed"
)

// Recorder は usecase.Recorder の Prometheus 実装です。
type Recorder struct {
	registry      *prometheus.Registry
	curveBuilds   *prometheus.CounterVec
	decisions     *prometheus.CounterVec
	confirmations *prometheus.CounterVec
	curvePoints   prometheus.Histogram
}

var _ usecase.Recorder = (*Recorder)(nil)

// NewRecorder は専用レジストリにコレクタを登録して Recorder を生成します。
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		curveBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yieldcurve_curve_builds_total",
			Help: "Yield curve builds by kind and outcome.",
		}, []string{"kind", "outcome"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yieldcurve_implied_yield_decisions_total",
			Help: "Daily implied yield selections by winning source.",
		}, []string{"source"}),
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yieldcurve_confirmations_total",
			Help: "Implied yield confirmations by outcome.",
		}, []string{"outcome"}),
		curvePoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "yieldcurve_curve_points",
			Help:    "Number of points on successfully built curves.",
			Buckets: prometheus.LinearBuckets(1, 5, 8),
		}),
	}
	r.registry.MustRegister(
		r.curveBuilds,
		r.decisions,
		r.confirmations,
		r.curvePoints,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) CurveBuilt(kind entity.CurveKind, points int, err error) {
	if err != nil {
		r.curveBuilds.WithLabelValues(string(kind), OutcomeFailure).Inc()
		return
	}
	r.curveBuilds.WithLabelValues(string(kind), OutcomeSuccess).Inc()
	r.curvePoints.Observe(float64(points))
}

func (r *Recorder) ImpliedYieldDecision(source entity.YieldSourceKind) {
	r.decisions.WithLabelValues(string(source)).Inc()
}

func (r *Recorder) Confirmation(err error) {
	switch {
	case err == nil:
		r.confirmations.WithLabelValues(OutcomeSuccess).Inc()
	case errors.Is(err, domain.ErrAlreadyConfirmedForDate):
		r.confirmations.WithLabelValues(OutcomeAlreadyConfirmed).Inc()
	default:
		r.confirmations.WithLabelValues(OutcomeFailure).Inc()
	}
}

// Handler は /metrics 用の HTTP ハンドラーを返します。
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
