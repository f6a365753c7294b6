package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the bridge configuration, read from HYLIGOTCHI_* variables.
type Config struct {
	APIURL         string        `env:"HYLIGOTCHI_API_URL"         envDefault:"http://localhost:4008"`
	IndexerURL     string        `env:"HYLIGOTCHI_INDEXER_URL"     envDefault:"http://localhost:4008"`
	Identity       string        `env:"HYLIGOTCHI_IDENTITY"`
	PollInterval   time.Duration `env:"HYLIGOTCHI_POLL_INTERVAL"   envDefault:"30s"`
	RequestTimeout time.Duration `env:"HYLIGOTCHI_REQUEST_TIMEOUT" envDefault:"10s"`
	ReadRetries    int           `env:"HYLIGOTCHI_READ_RETRIES"    envDefault:"3"`
	ListenAddr     string        `env:"HYLIGOTCHI_LISTEN_ADDR"     envDefault:":8090"`
	DBDSN          string        `env:"HYLIGOTCHI_DB_DSN"`
	JournalRetain  int           `env:"HYLIGOTCHI_JOURNAL_RETAIN"  envDefault:"200"`
	LogLevel       string        `env:"HYLIGOTCHI_LOG_LEVEL"       envDefault:"info"`
	CORSOrigins    []string      `env:"HYLIGOTCHI_CORS_ORIGINS"    envDefault:"*" envSeparator:","`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Identity = strings.TrimSpace(cfg.Identity)
	cfg.DBDSN = strings.TrimSpace(cfg.DBDSN)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	for name, raw := range map[string]string{"api url": c.APIURL, "indexer url": c.IndexerURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s %q", ErrInvalidConfig, name, raw)
		}
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidConfig)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidConfig)
	}
	if c.ReadRetries < 1 {
		return fmt.Errorf("%w: read retries must be at least 1", ErrInvalidConfig)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func ParseLogLevel(s string) (hlog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return hlog.LevelTrace, nil
	case "debug":
		return hlog.LevelDebug, nil
	case "", "info":
		return hlog.LevelInfo, nil
	case "notice":
		return hlog.LevelNotice, nil
	case "warn", "warning":
		return hlog.LevelWarn, nil
	case "error":
		return hlog.LevelError, nil
	case "fatal":
		return hlog.LevelFatal, nil
	default:
		return hlog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalidConfig, s)
	}
}
