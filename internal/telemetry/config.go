package telemetry

import (
	"strings"
	"time"
)

const (
	envPrefix      = "ASSEMBLY_TRACE_OTEL_"
	envEndpoint    = envPrefix + "ENDPOINT"
	envInsecure    = envPrefix + "INSECURE"
	envHeaders     = envPrefix + "HEADERS"
	envService     = envPrefix + "SERVICE"
	envDialTimeout = envPrefix + "TIMEOUT"
)

type Config struct {
	Endpoint    string
	Insecure    bool
	Headers     map[string]string
	ServiceName string
	Version     string
	DialTimeout time.Duration
}

// Default returns the baseline telemetry config used when no overrides exist.
func Default() Config {
	return Config{
		ServiceName: "assembly",
		DialTimeout: 5 * time.Second,
	}
}

// Enabled reports whether an exporter endpoint is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// ConfigFromEnv overlays ASSEMBLY_TRACE_OTEL_* variables on Default. Invalid
// values are ignored.
func ConfigFromEnv(getenv func(string) string) Config {
	cfg := Default()
	if getenv == nil {
		return cfg
	}
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg.Endpoint = get(envEndpoint)
	if v, ok := parseBool(get(envInsecure)); ok {
		cfg.Insecure = v
	}
	if v := get(envService); v != "" {
		cfg.ServiceName = v
	}
	if d, err := time.ParseDuration(get(envDialTimeout)); err == nil && d > 0 {
		cfg.DialTimeout = d
	}
	cfg.Headers = ParseHeaders(get(envHeaders))
	return cfg
}

// ParseHeaders converts comma separated key=value pairs into a header map.
// It returns nil when no pair has a key.
func ParseHeaders(spec string) map[string]string {
	var headers map[string]string
	for _, entry := range strings.Split(spec, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(entry), "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if headers == nil {
			headers = make(map[string]string)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
