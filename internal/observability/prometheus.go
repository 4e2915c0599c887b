package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// meterName identifies this module's instruments.
const meterName = "github.com/anchorscope/anchorscope"

// NewPrometheusMeter creates a Prometheus-backed OTel meter and the
// [http.Handler] serving its /metrics scrape endpoint. Each call creates an
// independent registry to avoid collector conflicts when called multiple
// times.
func NewPrometheusMeter() (metric.Meter, http.Handler, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return provider.Meter(meterName), promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}
