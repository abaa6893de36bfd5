package metrics

// Provider identifies a metrics backend.
type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	OtelCollector      Provider = "otelCollector"
)

// ProviderCfg configures one metrics backend.
type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// Config holds metric provider configuration.
type Config struct {
	ServiceName string
	Providers   []ProviderCfg
}

// OptionFn mutates the metric provider configuration.
type OptionFn func(config Config) Config

// WithServiceName sets the service name attached to exported metrics.
func WithServiceName(serviceName string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = serviceName
		return config
	}
}

// WithPrometheus adds a Prometheus pull reader.
func WithPrometheus() OptionFn {
	return func(config Config) Config {
		config.Providers = append(config.Providers, ProviderCfg{Provider: PrometheusProvider})
		return config
	}
}

// WithOtelCollector adds a periodic OTLP gRPC push reader.
func WithOtelCollector(endpoint string, headers map[string]string, insecure bool) OptionFn {
	return func(config Config) Config {
		config.Providers = append(config.Providers, ProviderCfg{
			Provider: OtelCollector,
			Endpoint: endpoint,
			Headers:  headers,
			Insecure: insecure,
		})
		return config
	}
}

// PromServerConfig configures the Prometheus scrape endpoint.
type PromServerConfig struct {
	port string
}

// PromOptionFn mutates the Prometheus server configuration.
type PromOptionFn func(config PromServerConfig) PromServerConfig

// WithPort sets the Prometheus scrape port.
func WithPort(port string) PromOptionFn {
	return func(config PromServerConfig) PromServerConfig {
		config.port = port
		return config
	}
}
