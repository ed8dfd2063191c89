package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	job := "notification-retention"
	m.ObserveRun(job, 250*time.Millisecond, nil)
	m.ObserveRun(job, 10*time.Millisecond, nil)
	m.ObserveRun(job, time.Second, errors.New("boom"))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := counterValue(t, mfs, "gudang_cron_job_runs_total", map[string]string{"job": job, "outcome": "success"}); got != 2 {
		t.Fatalf("expected 2 successes, got %f", got)
	}
	if got := counterValue(t, mfs, "gudang_cron_job_runs_total", map[string]string{"job": job, "outcome": "failure"}); got != 1 {
		t.Fatalf("expected 1 failure, got %f", got)
	}
	hist := findMetric(t, mfs, "gudang_cron_job_duration_seconds", map[string]string{"job": job}).GetHistogram()
	if hist.GetSampleCount() != 3 {
		t.Fatalf("expected 3 duration samples, got %d", hist.GetSampleCount())
	}
	if ts := findMetric(t, mfs, "gudang_cron_job_last_success_timestamp_seconds", map[string]string{"job": job}).GetGauge().GetValue(); ts <= 0 {
		t.Fatalf("expected last success timestamp, got %f", ts)
	}
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var m *CronJobMetrics
	m.ObserveRun("job", time.Second, nil)
	NewCronJobMetrics(nil).ObserveRun("", time.Second, errors.New("x"))
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	return findMetric(t, mfs, name, labels).GetCounter().GetValue()
}

func findMetric(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if hasLabels(metric.GetLabel(), labels) {
				return metric
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func hasLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
