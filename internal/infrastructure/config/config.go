package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	pkgkafka "github.com/bibbank/fraudml/pkg/kafka"
)

// Config holds all configuration for the pipeline CLI and the inference service.
type Config struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`

	DataDir     string `yaml:"data_dir"`
	ModelPath   string `yaml:"model_path"`
	MetricsPath string `yaml:"metrics_path"`

	HTTPPort        string `yaml:"http_port"`
	GRPCPort        string `yaml:"grpc_port"`
	GRPCReflection  bool   `yaml:"grpc_reflection"`
	GRPCTLSCertFile string `yaml:"grpc_tls_cert_file"`
	GRPCTLSKeyFile  string `yaml:"grpc_tls_key_file"`

	DatabaseURL  string   `yaml:"database_url"`
	KafkaBrokers []string `yaml:"kafka_broker"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	// SASL is enabled when a mechanism or username is set.
	KafkaSASLMechanism string `yaml:"kafka_sasl_mechanism"`
	KafkaSASLUsername  string `yaml:"kafka_sasl_username"`
	KafkaSASLPassword  string `yaml:"kafka_sasl_password"`
	KafkaTLS           bool   `yaml:"kafka_tls"`

	OTLPEndpoint string `yaml:"otel_exporter_otlp_endpoint"`

	InferenceURL      string        `yaml:"inference_url"`
	ValidationTimeout time.Duration `yaml:"validation_timeout"`

	F1Threshold       float64 `yaml:"f1_threshold"`
	AccuracyThreshold float64 `yaml:"accuracy_threshold"`

	Samples   int     `yaml:"samples"`
	FraudRate float64 `yaml:"fraud_rate"`
	TestSize  float64 `yaml:"test_size"`
	Seed      int64   `yaml:"seed"`
}

// knownKeys are the environment variables Load reads. A pipeline file may set
// any of them using the lower-case name.
var knownKeys = []string{
	"ENVIRONMENT", "LOG_LEVEL", "LOG_FORMAT",
	"DATA_DIR", "MODEL_PATH", "METRICS_PATH",
	"HTTP_PORT", "GRPC_PORT", "GRPC_REFLECTION", "GRPC_TLS_CERT_FILE", "GRPC_TLS_KEY_FILE",
	"DATABASE_URL", "KAFKA_BROKER", "KAFKA_TOPIC",
	"KAFKA_SASL_MECHANISM", "KAFKA_SASL_USERNAME", "KAFKA_SASL_PASSWORD", "KAFKA_TLS",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"INFERENCE_URL", "VALIDATION_TIMEOUT",
	"F1_THRESHOLD", "ACCURACY_THRESHOLD",
	"SAMPLES", "FRAUD_RATE", "TEST_SIZE", "SEED",
}

type lookupFunc func(key string) (string, bool)

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	return load(os.LookupEnv)
}

// LoadFile reads a YAML pipeline file and overlays the environment on top of
// it. Environment variables win over file values, which win over defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Load()
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	known := make(map[string]bool, len(knownKeys))
	for _, k := range knownKeys {
		known[strings.ToLower(k)] = true
	}
	var unknown []string
	for _, k := range v.AllKeys() {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown keys in config file %s: %s", path, strings.Join(unknown, ", "))
	}

	return load(func(key string) (string, bool) {
		if val, ok := os.LookupEnv(key); ok {
			return val, true
		}
		fileKey := strings.ToLower(key)
		if !v.IsSet(fileKey) {
			return "", false
		}
		if key == "KAFKA_BROKER" {
			return strings.Join(v.GetStringSlice(fileKey), ","), true
		}
		return v.GetString(fileKey), true
	})
}

func load(lookup lookupFunc) (*Config, error) {
	e := &envReader{lookup: lookup}

	cfg := &Config{
		Environment: e.str("ENVIRONMENT", "development"),
		LogLevel:    e.str("LOG_LEVEL", "info"),
		LogFormat:   e.str("LOG_FORMAT", "json"),

		DataDir:     e.str("DATA_DIR", "data"),
		ModelPath:   e.str("MODEL_PATH", filepath.Join("model", "fraud_model.json")),
		MetricsPath: e.str("METRICS_PATH", filepath.Join("metrics", "evaluation_metrics.json")),

		HTTPPort:        e.str("HTTP_PORT", "5000"),
		GRPCPort:        e.str("GRPC_PORT", ""),
		GRPCReflection:  e.boolean("GRPC_REFLECTION", false),
		GRPCTLSCertFile: e.str("GRPC_TLS_CERT_FILE", ""),
		GRPCTLSKeyFile:  e.str("GRPC_TLS_KEY_FILE", ""),

		DatabaseURL:  e.str("DATABASE_URL", ""),
		KafkaBrokers: pkgkafka.ParseBrokers(e.str("KAFKA_BROKER", "")),
		KafkaTopic:   e.str("KAFKA_TOPIC", "fraudml.events"),

		KafkaSASLMechanism: e.str("KAFKA_SASL_MECHANISM", ""),
		KafkaSASLUsername:  e.str("KAFKA_SASL_USERNAME", ""),
		KafkaSASLPassword:  e.str("KAFKA_SASL_PASSWORD", ""),
		KafkaTLS:           e.boolean("KAFKA_TLS", false),

		OTLPEndpoint: e.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		InferenceURL:      e.str("INFERENCE_URL", "http://localhost:5001/predict"),
		ValidationTimeout: e.duration("VALIDATION_TIMEOUT", 0),

		F1Threshold:       e.float("F1_THRESHOLD", 0.7),
		AccuracyThreshold: e.float("ACCURACY_THRESHOLD", 0.90),

		Samples:   e.integer("SAMPLES", 2000),
		FraudRate: e.float("FRAUD_RATE", 0.02),
		TestSize:  e.float("TEST_SIZE", 0.3),
		Seed:      int64(e.integer("SEED", 42)),
	}

	if len(e.errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(e.errs, "; "))
	}
	return cfg, nil
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// GRPCAddress returns the full gRPC listen address, or "" when gRPC is disabled.
func (c *Config) GRPCAddress() string {
	if c.GRPCPort == "" {
		return ""
	}
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// Kafka returns the client settings shared by the event producer and the
// events consumer.
func (c *Config) Kafka() pkgkafka.Config {
	return pkgkafka.Config{
		Brokers:       c.KafkaBrokers,
		TLS:           c.KafkaTLS,
		SASLEnabled:   c.KafkaSASLMechanism != "" || c.KafkaSASLUsername != "",
		SASLMechanism: c.KafkaSASLMechanism,
		SASLUsername:  c.KafkaSASLUsername,
		SASLPassword:  c.KafkaSASLPassword,
	}
}

// TransactionsPath is the raw synthetic dataset.
func (c *Config) TransactionsPath() string {
	return filepath.Join(c.DataDir, "transactions.csv")
}

// FeaturesPath is the full labelled feature table.
func (c *Config) FeaturesPath() string {
	return filepath.Join(c.DataDir, "features.csv")
}

// TestFeaturesPath is the held-out feature partition.
func (c *Config) TestFeaturesPath() string {
	return filepath.Join(c.DataDir, "test_features.csv")
}

// TestLabelsPath is the held-out label partition.
func (c *Config) TestLabelsPath() string {
	return filepath.Join(c.DataDir, "test_labels.csv")
}

// Redacted returns a copy safe to print, with database and Kafka credentials
// masked.
func (c *Config) Redacted() Config {
	out := *c
	out.KafkaBrokers = append([]string(nil), c.KafkaBrokers...)
	if c.KafkaSASLPassword != "" {
		out.KafkaSASLPassword = "xxxxx"
	}
	if u, err := url.Parse(c.DatabaseURL); err == nil && c.DatabaseURL != "" {
		out.DatabaseURL = u.Redacted()
	}
	return out
}

// envReader collects parse errors instead of silently falling back.
type envReader struct {
	lookup lookupFunc
	errs   []string
}

// str treats a variable set to the empty string as unset.
func (e *envReader) str(key, defaultValue string) string {
	if value, exists := e.lookup(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func (e *envReader) integer(key string, defaultValue int) int {
	value, exists := e.lookup(key)
	if !exists || value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s: %q is not an integer", key, value))
		return defaultValue
	}
	return n
}

func (e *envReader) float(key string, defaultValue float64) float64 {
	value, exists := e.lookup(key)
	if !exists || value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s: %q is not a number", key, value))
		return defaultValue
	}
	return f
}

func (e *envReader) boolean(key string, defaultValue bool) bool {
	value, exists := e.lookup(key)
	if !exists || value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s: %q is not a boolean", key, value))
		return defaultValue
	}
	return b
}

func (e *envReader) duration(key string, defaultValue time.Duration) time.Duration {
	value, exists := e.lookup(key)
	if !exists || value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s: %q is not a duration", key, value))
		return defaultValue
	}
	return d
}
