package prom

import "github.com/prometheus/client_golang/prometheus"

var (
	QueryTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prediction_queries_total",
		Help: "number of prediction queries served",
	})
	QueryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "prediction_query_duration_seconds",
		Help:    "prediction query latency",
		Buckets: prometheus.DefBuckets,
	})
	PredictFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_algorithm_failures_total",
		Help: "per-query predictions dropped from the serving join",
	}, []string{"algorithm"})
	TrainTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "train_runs_total",
		Help: "train runs by final status",
	}, []string{"status"})
	CurrentInstance = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "deployed_instance_id",
		Help: "id of the engine instance answering live queries",
	})
)

// run before route define, now at root.go
func init() {
	_ = prometheus.Register(QueryTotal)
	_ = prometheus.Register(QueryDuration)
	_ = prometheus.Register(PredictFailures)
	_ = prometheus.Register(TrainTotal)
	_ = prometheus.Register(CurrentInstance)
}
