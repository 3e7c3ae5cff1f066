// pkg/ctrader/config.go
package ctrader

import (
	"fmt"
	"strings"
	"time"

	"github.com/YaganovValera/ctrader-connect/pkg/backoff"
)

// Config задаёт параметры клиентской сессии Open API.
type Config struct {
	Demo     bool     `mapstructure:"demo"`     // demo-среда вместо live
	Encoding Encoding `mapstructure:"encoding"` // "protobuf" или "json"

	// URL переопределяет адрес, вычисляемый из Demo/Encoding.
	// Используется в тестах и при работе через прокси.
	URL string `mapstructure:"url"`

	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"` // если 0 — 30s
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`      // если 0 — 10s
	SendQueueSize     int           `mapstructure:"send_queue_size"`    // если 0 — 64

	// ConnectBackoff управляет повторами установления соединения.
	// По умолчанию — фиксированные 5s между попытками без лимита.
	ConnectBackoff backoff.Config `mapstructure:"connect_backoff"`
}

func (c *Config) applyDefaults() {
	if c.Encoding == "" {
		c.Encoding = EncodingProtobuf
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 64
	}
	if c.ConnectBackoff.InitialInterval <= 0 {
		c.ConnectBackoff.InitialInterval = 5 * time.Second
	}
	if c.ConnectBackoff.Multiplier <= 0 {
		c.ConnectBackoff.Multiplier = 1.0
	}
	if c.ConnectBackoff.MaxInterval <= 0 {
		c.ConnectBackoff.MaxInterval = 5 * time.Second
	}
}

func (c *Config) validate() error {
	var errs []string

	switch c.Encoding {
	case EncodingProtobuf, EncodingJSON:
	default:
		errs = append(errs, fmt.Sprintf("unknown encoding %q", c.Encoding))
	}
	if c.URL != "" && !strings.HasPrefix(c.URL, "ws://") && !strings.HasPrefix(c.URL, "wss://") {
		errs = append(errs, fmt.Sprintf("URL must be a ws:// or wss:// address, got %q", c.URL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid Config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// endpoint возвращает итоговый адрес подключения.
func (c Config) endpoint() string {
	if c.URL != "" {
		return c.URL
	}
	return Resolve(c.Demo, c.Encoding)
}
