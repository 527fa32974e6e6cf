package monitoring

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType 指标类型
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric names recorded by the prediction endpoints.
const (
	MetricPredictions       = "predictions_total"
	MetricPredictionErrors  = "prediction_errors_total"
	MetricRejectedRecords   = "rejected_records_total"
	MetricCacheHits         = "prediction_cache_hits_total"
	MetricPredictionLatency = "prediction_latency_seconds"
	MetricPredictedSales    = "predicted_sales"
	MetricArtifactChanges   = "model_artifact_changes_total"
)

const maxHistory = 1000

// Metric is one recorded sample.
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Help      string            `json:"help,omitempty"`
}

// MetricsCollector keeps recent samples per metric name in memory.
type MetricsCollector struct {
	metrics     map[string][]*Metric
	totals      map[string]float64
	metricsLock sync.RWMutex

	startTime time.Time
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics:   make(map[string][]*Metric),
		totals:    make(map[string]float64),
		startTime: time.Now(),
	}
}

// RecordMetric 记录指标
func (mc *MetricsCollector) RecordMetric(metric *Metric) {
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()

	metric.Timestamp = time.Now()
	mc.metrics[metric.Name] = append(mc.metrics[metric.Name], metric)
	if metric.Type == MetricTypeCounter {
		mc.totals[metric.Name] += metric.Value
	}

	// Keep the most recent samples only.
	if len(mc.metrics[metric.Name]) > maxHistory {
		mc.metrics[metric.Name] = mc.metrics[metric.Name][100:]
	}
}

// GetMetric 获取指标
func (mc *MetricsCollector) GetMetric(name string) ([]*Metric, error) {
	mc.metricsLock.RLock()
	defer mc.metricsLock.RUnlock()

	metrics, ok := mc.metrics[name]
	if !ok {
		return nil, fmt.Errorf("metric %s not found", name)
	}

	result := make([]*Metric, len(metrics))
	for i, m := range metrics {
		metricCopy := *m
		result[i] = &metricCopy
	}
	return result, nil
}

// Total returns the running sum of a counter. Unlike the sample history it
// is never trimmed.
func (mc *MetricsCollector) Total(name string) float64 {
	mc.metricsLock.RLock()
	defer mc.metricsLock.RUnlock()
	return mc.totals[name]
}

// GetMetricSummary 获取指标摘要
func (mc *MetricsCollector) GetMetricSummary(name string) (map[string]interface{}, error) {
	metrics, err := mc.GetMetric(name)
	if err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return map[string]interface{}{"count": 0}, nil
	}

	lo, hi, sum := metrics[0].Value, metrics[0].Value, 0.0
	for _, m := range metrics {
		sum += m.Value
		if m.Value < lo {
			lo = m.Value
		}
		if m.Value > hi {
			hi = m.Value
		}
	}

	return map[string]interface{}{
		"name":      name,
		"count":     len(metrics),
		"latest":    metrics[len(metrics)-1].Value,
		"min":       lo,
		"max":       hi,
		"average":   sum / float64(len(metrics)),
		"timestamp": metrics[len(metrics)-1].Timestamp,
	}, nil
}

// IncrCounter 增加计数器
func (mc *MetricsCollector) IncrCounter(name string, value float64, labels map[string]string) {
	mc.RecordMetric(&Metric{
		Name:   name,
		Type:   MetricTypeCounter,
		Value:  value,
		Labels: labels,
	})
}

// RecordHistogram 记录直方图
func (mc *MetricsCollector) RecordHistogram(name string, value float64, labels map[string]string) {
	mc.RecordMetric(&Metric{
		Name:   name,
		Type:   MetricTypeHistogram,
		Value:  value,
		Labels: labels,
	})
}

// RecordPrediction books one prediction request. source names the surface
// that served it (http or ws).
func (mc *MetricsCollector) RecordPrediction(source string, took time.Duration, sales float64, err error, cached bool) {
	labels := map[string]string{"source": source}
	mc.IncrCounter(MetricPredictions, 1, labels)
	if err != nil {
		mc.IncrCounter(MetricPredictionErrors, 1, labels)
		return
	}
	if cached {
		mc.IncrCounter(MetricCacheHits, 1, labels)
	}
	mc.RecordHistogram(MetricPredictionLatency, took.Seconds(), labels)
	mc.RecordHistogram(MetricPredictedSales, sales, labels)
}

// RecordRejected books a request refused before reaching the model.
func (mc *MetricsCollector) RecordRejected(source string) {
	mc.IncrCounter(MetricRejectedRecords, 1, map[string]string{"source": source})
}

// Snapshot summarizes every metric for the metrics endpoint.
func (mc *MetricsCollector) Snapshot() map[string]interface{} {
	mc.metricsLock.RLock()
	names := make([]string, 0, len(mc.metrics))
	for name := range mc.metrics {
		names = append(names, name)
	}
	mc.metricsLock.RUnlock()
	sort.Strings(names)

	counters := make(map[string]float64)
	histograms := make(map[string]interface{})
	for _, name := range names {
		metrics, err := mc.GetMetric(name)
		if err != nil || len(metrics) == 0 {
			continue
		}
		if metrics[0].Type == MetricTypeCounter {
			counters[name] = mc.Total(name)
			continue
		}
		if summary, err := mc.GetMetricSummary(name); err == nil {
			histograms[name] = summary
		}
	}
	return map[string]interface{}{
		"uptime":     mc.GetUptime().String(),
		"counters":   counters,
		"histograms": histograms,
	}
}

// ExportPrometheus 导出Prometheus格式
func (mc *MetricsCollector) ExportPrometheus() string {
	mc.metricsLock.RLock()
	defer mc.metricsLock.RUnlock()

	names := make([]string, 0, len(mc.metrics))
	for name := range mc.metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		samples := mc.metrics[name]
		if len(samples) == 0 {
			continue
		}
		latest := samples[len(samples)-1]
		help := latest.Help
		if help == "" {
			help = fmt.Sprintf("Metric %s", name)
		}
		value := latest.Value
		if latest.Type == MetricTypeCounter {
			value = mc.totals[name]
		}
		fmt.Fprintf(&b, "# HELP %s %s\n", name, help)
		fmt.Fprintf(&b, "# TYPE %s %s\n", name, latest.Type)
		fmt.Fprintf(&b, "%s %f %d\n", name, value, latest.Timestamp.Unix())
	}
	return b.String()
}

// ExportJSON 导出JSON格式
func (mc *MetricsCollector) ExportJSON() (string, error) {
	data, err := json.MarshalIndent(mc.Snapshot(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetUptime 获取运行时间
func (mc *MetricsCollector) GetUptime() time.Duration {
	return time.Since(mc.startTime)
}
