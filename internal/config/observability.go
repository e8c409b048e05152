package config

// OtelConfig holds OTLP trace export configuration.
//
// Tracing is disabled when Endpoint is empty. See
// internal/observability/otel.go for the exporter setup.
type OtelConfig struct {
	// Endpoint is the OTLP HTTP collector endpoint (e.g. localhost:4318).
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// ServiceName is the service name attached to exported spans.
	ServiceName string `mapstructure:"service_name" json:"service_name"`
	// Environment is the deployment environment tag.
	Environment string `mapstructure:"environment" json:"environment"`
}
