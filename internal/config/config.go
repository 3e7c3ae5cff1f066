// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/YaganovValera/ctrader-connect/pkg/backoff"
	"github.com/YaganovValera/ctrader-connect/pkg/ctrader"
)

/*
   --------------------------------------------------------------------------
   СТРУКТУРЫ
   --------------------------------------------------------------------------
*/

// Config — все настройки сервиса.
type Config struct {
	ServiceName    string         `mapstructure:"service_name"`
	ServiceVersion string         `mapstructure:"service_version"`
	CTrader        CTraderConfig  `mapstructure:"ctrader"`
	Kafka          KafkaConfig    `mapstructure:"kafka"`
	Dispatch       DispatchConfig `mapstructure:"dispatch"`
	Telemetry      Telemetry      `mapstructure:"telemetry"`
	Logging        Logging        `mapstructure:"logging"`
	HTTP           HTTPConfig     `mapstructure:"http"`
}

// CTraderConfig хранит настройки сессии и учётные данные Open API.
type CTraderConfig struct {
	Demo     bool   `mapstructure:"demo"`
	Encoding string `mapstructure:"encoding"`
	URL      string `mapstructure:"url"` // переопределяет demo/encoding

	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	AccountID    int64  `mapstructure:"account_id"`
	AccessToken  string `mapstructure:"access_token"`
	RefreshToken string `mapstructure:"refresh_token"`

	SymbolIDs              []int64 `mapstructure:"symbol_ids"`
	SubscribeSpotTimestamp bool    `mapstructure:"subscribe_spot_timestamp"`

	HeartbeatInterval time.Duration  `mapstructure:"heartbeat_interval"`
	ConnectBackoff    backoff.Config `mapstructure:"connect_backoff"`
}

// KafkaConfig хранит настройки Kafka.
type KafkaConfig struct {
	Brokers        []string       `mapstructure:"brokers"`
	SpotTopic      string         `mapstructure:"spot_topic"`
	ExecutionTopic string         `mapstructure:"execution_topic"`
	Timeout        time.Duration  `mapstructure:"timeout"`
	Acks           string         `mapstructure:"acks"`
	Compression    string         `mapstructure:"compression"`
	FlushFrequency time.Duration  `mapstructure:"flush_frequency"`
	FlushMessages  int            `mapstructure:"flush_messages"`
	Backoff        backoff.Config `mapstructure:"backoff"`
}

// DispatchConfig хранит настройки слоя корреляции запрос/ответ.
type DispatchConfig struct {
	ResponseTimeout time.Duration `mapstructure:"response_timeout"`
}

// Telemetry хранит настройки OpenTelemetry.
type Telemetry struct {
	OTLPEndpoint string `mapstructure:"otel_endpoint"`
	Insecure     bool   `mapstructure:"insecure"`
}

// Logging хранит настройки логгера.
type Logging struct {
	Level   string `mapstructure:"level"`
	DevMode bool   `mapstructure:"dev_mode"`
}

// HTTPConfig хранит конфигурацию HTTP-/metrics-сервера.
type HTTPConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MetricsPath     string        `mapstructure:"metrics_path"`
	HealthzPath     string        `mapstructure:"healthz_path"`
	ReadyzPath      string        `mapstructure:"readyz_path"`
}

/*
   --------------------------------------------------------------------------
   LOADER
   --------------------------------------------------------------------------
*/

// Load загружает и валидирует конфиг. Если path пустой — читаются только ENV и defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	// ---------- 1) Defaults ----------
	v.SetDefault("service_name", "ctrader-connect")
	v.SetDefault("service_version", "v1.0.0")

	// cTrader
	v.SetDefault("ctrader.demo", true)
	v.SetDefault("ctrader.encoding", "protobuf")
	v.SetDefault("ctrader.heartbeat_interval", "30s")
	v.SetDefault("ctrader.connect_backoff.initial_interval", "5s")
	v.SetDefault("ctrader.connect_backoff.multiplier", 1.0)
	v.SetDefault("ctrader.connect_backoff.max_interval", "5s")

	// Kafka
	v.SetDefault("kafka.spot_topic", "ctrader.spots.raw")
	v.SetDefault("kafka.execution_topic", "ctrader.executions.raw")
	v.SetDefault("kafka.acks", "all")
	v.SetDefault("kafka.timeout", "15s")
	v.SetDefault("kafka.compression", "none")
	v.SetDefault("kafka.flush_frequency", "0s")
	v.SetDefault("kafka.flush_messages", 0)

	// Dispatch
	v.SetDefault("dispatch.response_timeout", "15s")

	// Telemetry
	v.SetDefault("telemetry.otel_endpoint", "otel-collector:4317")
	v.SetDefault("telemetry.insecure", false)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.dev_mode", false)

	// HTTP server
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "15s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.shutdown_timeout", "5s")
	v.SetDefault("http.metrics_path", "/metrics")
	v.SetDefault("http.healthz_path", "/healthz")
	v.SetDefault("http.readyz_path", "/readyz")

	// ---------- 2) ENV ----------
	v.SetEnvPrefix("CTRADER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// ---------- 3) Optional file ----------
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", v.ConfigFileUsed(), err)
		}
	}

	// ---------- 4) Decode ----------
	var cfg Config
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToBoolHook,
	)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "mapstructure",
		Result:     &cfg,
		DecodeHook: decodeHook,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// ---------- 5) Validation ----------
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// stringToBoolHook разбирает true/false, иначе отдает исходные данные.
func stringToBoolHook(f, t reflect.Kind, data interface{}) (interface{}, error) {
	if f == reflect.String && t == reflect.Bool {
		return strconv.ParseBool(data.(string))
	}
	return data, nil
}

/*
   --------------------------------------------------------------------------
   VALIDATION
   --------------------------------------------------------------------------
*/

func (c *Config) Validate() error {
	// Service
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.ServiceVersion == "" {
		return fmt.Errorf("service_version is required")
	}

	// cTrader
	switch ctrader.Encoding(c.CTrader.Encoding) {
	case ctrader.EncodingProtobuf, ctrader.EncodingJSON:
	default:
		return fmt.Errorf("ctrader.encoding must be one of [protobuf, json]")
	}
	if c.CTrader.ClientID == "" || c.CTrader.ClientSecret == "" {
		return fmt.Errorf("ctrader.client_id and ctrader.client_secret are required")
	}
	if c.CTrader.AccountID <= 0 {
		return fmt.Errorf("ctrader.account_id must be > 0")
	}
	if c.CTrader.AccessToken == "" {
		return fmt.Errorf("ctrader.access_token is required")
	}
	if c.CTrader.HeartbeatInterval <= 0 {
		return fmt.Errorf("ctrader.heartbeat_interval must be > 0")
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required")
	}
	if c.Kafka.SpotTopic == "" || c.Kafka.ExecutionTopic == "" {
		return fmt.Errorf("kafka.spot_topic and kafka.execution_topic are required")
	}
	switch strings.ToLower(c.Kafka.Acks) {
	case "all", "leader", "none":
	default:
		return fmt.Errorf("kafka.acks must be one of [all, leader, none]")
	}
	switch strings.ToLower(c.Kafka.Compression) {
	case "none", "gzip", "snappy", "lz4", "zstd":
	default:
		return fmt.Errorf("kafka.compression must be one of [none, gzip, snappy, lz4, zstd]")
	}

	// Dispatch
	if c.Dispatch.ResponseTimeout <= 0 {
		return fmt.Errorf("dispatch.response_timeout must be > 0")
	}

	// Telemetry
	if c.Telemetry.OTLPEndpoint == "" {
		return fmt.Errorf("telemetry.otel_endpoint is required")
	}

	// Logging
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error]")
	}

	// HTTP
	return validateHTTP(&c.HTTP)
}

func validateHTTP(h *HTTPConfig) error {
	if h.Port <= 0 || h.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535")
	}
	durations := map[string]time.Duration{
		"http.read_timeout":     h.ReadTimeout,
		"http.write_timeout":    h.WriteTimeout,
		"http.idle_timeout":     h.IdleTimeout,
		"http.shutdown_timeout": h.ShutdownTimeout,
	}
	for k, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be > 0", k)
		}
	}
	paths := map[string]string{
		"http.metrics_path": h.MetricsPath,
		"http.healthz_path": h.HealthzPath,
		"http.readyz_path":  h.ReadyzPath,
	}
	for k, p := range paths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s must start with '/'", k)
		}
	}
	return nil
}

/*
   --------------------------------------------------------------------------
   DEBUG PRINT
   --------------------------------------------------------------------------
*/

// Print выводит текущий конфиг в JSON (удобно в DevMode).
// Учётные данные замазываются.
func (c *Config) Print() {
	masked := *c
	masked.CTrader.ClientSecret = mask(masked.CTrader.ClientSecret)
	masked.CTrader.AccessToken = mask(masked.CTrader.AccessToken)
	masked.CTrader.RefreshToken = mask(masked.CTrader.RefreshToken)

	b, _ := json.MarshalIndent(masked, "", "  ")
	fmt.Println("Loaded configuration:\n", string(b))
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "****" + s[len(s)-2:]
}
