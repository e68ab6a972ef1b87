package pipeline

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("elixir-analyzer.pipeline")

var (
	filesTotal  metric.Int64Counter
	issuesTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error
		filesTotal, err = meter.Int64Counter(
			"analysis_files_total",
			metric.WithDescription("Files analyzed, by parse outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		issuesTotal, err = meter.Int64Counter(
			"analysis_issues_total",
			metric.WithDescription("Issues reported, by rule key"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

// recordSummary exports the counts of one run.
func recordSummary(ctx context.Context, s *Summary) {
	if err := initMetrics(); err != nil {
		return
	}
	outcomes := map[string]int{
		"parsed": s.Parsed - s.Cached,
		"cached": s.Cached,
		"failed": s.Failed,
	}
	for outcome, n := range outcomes {
		if n > 0 {
			filesTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String("outcome", outcome)))
		}
	}
	for rule, n := range s.ByRule {
		issuesTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String("rule", rule)))
	}
}
