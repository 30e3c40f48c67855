package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		PoolSize int    `koanf:"pool_size"`
	} `koanf:"redis"`

	Archive struct {
		// Empty DSN disables the relational order archive.
		MySQLDSN        string        `koanf:"mysql_dsn"`
		Workers         int           `koanf:"workers"`
		QueueSize       int           `koanf:"queue_size"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"archive"`

	Stress struct {
		CounterKey   string        `koanf:"counter_key"`
		ComputeDelay time.Duration `koanf:"compute_delay"`
		MaxRetries   int           `koanf:"max_retries"`
		RetryBackoff time.Duration `koanf:"retry_backoff"`
	} `koanf:"stress"`
}

// Load reads base.yaml from pathDir, overlays an optional <envName>.yaml
// and then environment variables (prefix REDISORDERS_, nested with __).
func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	if err := k.Load(env.Provider("REDISORDERS_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "REDISORDERS_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr required")
	}
	if c.Archive.MySQLDSN != "" && c.Archive.Workers <= 0 {
		return fmt.Errorf("archive.workers must be positive when archive is enabled")
	}
	return nil
}
