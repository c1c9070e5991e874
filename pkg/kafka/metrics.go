package kafka

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	producerMsgsTotal   *prometheus.CounterVec
	producerBytesTotal  *prometheus.CounterVec
	producerLatencyHist *prometheus.HistogramVec

	consumerMsgsTotal     *prometheus.CounterVec
	consumerRetriesTotal  *prometheus.CounterVec
	consumerQueueDepth    prometheus.Gauge
	consumerHandleLatency *prometheus.HistogramVec

	metricsOnce sync.Once
)

func initMetrics() {
	metricsOnce.Do(func() {
		producerMsgsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizpulse_kafka_producer_messages_total",
				Help: "Messages published to Kafka",
			},
			[]string{"topic", "result"},
		)
		producerBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizpulse_kafka_producer_bytes_total",
				Help: "Payload bytes published",
			},
			[]string{"topic"},
		)
		producerLatencyHist = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bizpulse_kafka_producer_publish_seconds",
				Help:    "Publish latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		)
		consumerMsgsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizpulse_kafka_consumer_messages_total",
				Help: "Consumed messages by outcome (ok, dlq, dropped)",
			},
			[]string{"topic", "result"},
		)
		consumerRetriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizpulse_kafka_consumer_retries_total",
				Help: "Handler retries",
			},
			[]string{"topic"},
		)
		consumerQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "bizpulse_kafka_consumer_queue_depth",
			Help: "Messages waiting for a worker",
		})
		consumerHandleLatency = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bizpulse_kafka_consumer_handle_seconds",
				Help:    "Handling time per message including retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		)
	})
}

func observePublish(topic string, bytes int64, count int, dur time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	producerMsgsTotal.WithLabelValues(topic, result).Add(float64(count))
	producerBytesTotal.WithLabelValues(topic).Add(float64(bytes))
	producerLatencyHist.WithLabelValues(topic).Observe(dur.Seconds())
}
