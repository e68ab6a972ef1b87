package parser

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("elixir-analyzer.parser")
	meter  = otel.Meter("elixir-analyzer.parser")
)

var (
	parseLatency  metric.Float64Histogram
	parseTotal    metric.Int64Counter
	parseFailures metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		parseLatency, err = meter.Float64Histogram(
			"parse_duration_seconds",
			metric.WithDescription("Duration of translator runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseTotal, err = meter.Int64Counter(
			"parse_total",
			metric.WithDescription("Total number of translator runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseFailures, err = meter.Int64Counter(
			"parse_failures_total",
			metric.WithDescription("Translator runs that produced no tree"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startParseSpan(ctx context.Context, file string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Client.Parse",
		trace.WithAttributes(attribute.String("parse.file", file)),
	)
}

func setParseSpanResult(span trace.Span, tokens int, err error) {
	span.SetAttributes(
		attribute.Int("parse.token_count", tokens),
		attribute.Bool("parse.ok", err == nil),
	)
	if err != nil {
		span.RecordError(err)
	}
}

// recordParseMetrics records one translator run. cause is empty on success.
func recordParseMetrics(ctx context.Context, duration time.Duration, cause string) {
	if err := initMetrics(); err != nil {
		return
	}
	success := cause == ""
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	parseLatency.Record(ctx, duration.Seconds(), attrs)
	parseTotal.Add(ctx, 1, attrs)
	if !success {
		parseFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("cause", cause)))
	}
}
