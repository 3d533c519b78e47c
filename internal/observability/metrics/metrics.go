package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes voucher engine instruments.
type Metrics struct {
	voucherOperations  metric.Int64Counter
	validationFailures metric.Int64Counter
	numberingConflicts metric.Int64Counter
	resolutionFailures metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)

	return provider, nil
}

// New creates the voucher instruments on the given provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "ledgerly"
	}
	meter := provider.Meter(name)

	voucherOperations, err := meter.Int64Counter("ledgerly_voucher_operations_total")
	if err != nil {
		return nil, err
	}
	validationFailures, err := meter.Int64Counter("ledgerly_voucher_validation_failures_total")
	if err != nil {
		return nil, err
	}
	numberingConflicts, err := meter.Int64Counter("ledgerly_numbering_conflicts_total")
	if err != nil {
		return nil, err
	}
	resolutionFailures, err := meter.Int64Counter("ledgerly_resolution_failures_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		voucherOperations:  voucherOperations,
		validationFailures: validationFailures,
		numberingConflicts: numberingConflicts,
		resolutionFailures: resolutionFailures,
	}, nil
}

// NewNoop returns instruments bound to a no-op provider.
func NewNoop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

// RecordVoucherOperation counts create/update/delete outcomes.
func (m *Metrics) RecordVoucherOperation(ctx context.Context, operation, voucherType, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("operation", operation),
		attribute.String("voucher_type", voucherType),
		attribute.String("outcome", outcome),
	)
	m.voucherOperations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordValidationFailure counts rejected drafts by rule code.
func (m *Metrics) RecordValidationFailure(ctx context.Context, voucherType, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("voucher_type", voucherType),
		attribute.String("reason", reason),
	)
	m.validationFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordNumberingConflict(ctx context.Context, voucherType string) {
	if m == nil {
		return
	}
	m.numberingConflicts.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("voucher_type", voucherType))...))
}

func (m *Metrics) RecordResolutionFailure(ctx context.Context, voucherType string) {
	if m == nil {
		return
	}
	m.resolutionFailures.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("voucher_type", voucherType))...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"operation":    {},
	"voucher_type": {},
	"outcome":      {},
	"reason":       {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
