package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix 环境变量前缀，NWC_MYSQL__DSN 对应 mysql.dsn
const EnvPrefix = "NWC_"

// Config represents the application configuration
type Config struct {
	HTTP struct {
		Addr string `koanf:"addr"`
	} `koanf:"http"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		DB       int    `koanf:"db"`
	} `koanf:"redis"`

	Kafka struct {
		Brokers []string `koanf:"brokers"`
		Topic   string   `koanf:"topic"`
	} `koanf:"kafka"`

	Auth struct {
		Secret   string        `koanf:"secret"`
		TokenTTL time.Duration `koanf:"token_ttl"`
	} `koanf:"auth"`

	Log struct {
		Level  string `koanf:"level"`
		Pretty bool   `koanf:"pretty"`
	} `koanf:"log"`

	Bot struct {
		ReplyRate   float64       `koanf:"reply_rate"`
		ReplyBurst  int           `koanf:"reply_burst"`
		Workers     int           `koanf:"workers"`
		Queue       int           `koanf:"queue"`
		PageTimeout time.Duration `koanf:"page_timeout"`
		VoteTimeout time.Duration `koanf:"vote_timeout"`
	} `koanf:"bot"`

	Outbox struct {
		BatchSize int           `koanf:"batch_size"`
		Interval  time.Duration `koanf:"interval"`
		MaxRetry  int           `koanf:"max_retry"`
	} `koanf:"outbox"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"http.addr":               ":8080",
		"mysql.max_open_conns":    20,
		"mysql.max_idle_conns":    5,
		"mysql.conn_max_lifetime": "30m",
		"redis.db":                0,
		"kafka.topic":             "detections",
		"auth.token_ttl":          "720h",
		"log.level":               "info",
		"log.pretty":              false,
		"bot.reply_rate":          0.5,
		"bot.reply_burst":         3,
		"bot.workers":             4,
		"bot.queue":               256,
		"bot.page_timeout":        "60s",
		"bot.vote_timeout":        "5s",
		"outbox.batch_size":       200,
		"outbox.interval":         "1s",
		"outbox.max_retry":        5,
	}
}

// Load 默认值 -> TOML 文件（可选）-> 环境变量，后者覆盖前者
func Load(configPath string) (*Config, error) {
	var k = koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	}

	// 双下划线分隔层级，单下划线保留在 key 里：NWC_BOT__REPLY_RATE -> bot.reply_rate
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	// 默认的 decode hook 会处理 "60s" 这类时长和逗号分隔的 broker 列表
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// Validate 检查启动服务必需的配置
func Validate(cfg *Config) error {
	if cfg.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if cfg.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required")
	}
	if len(cfg.Auth.Secret) < 16 {
		return fmt.Errorf("auth.secret must be at least 16 characters")
	}
	if cfg.Bot.ReplyRate < 0 {
		return fmt.Errorf("bot.reply_rate must not be negative")
	}
	if cfg.Outbox.BatchSize <= 0 {
		return fmt.Errorf("outbox.batch_size must be positive")
	}
	return nil
}

// InitConfig 写出示例配置文件
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# nword counter configuration

[http]
addr = ":8080"

[mysql]
dsn = "user:password@tcp(127.0.0.1:3306)/nword_counter?charset=utf8mb4&parseTime=True"

[redis]
# 不填 addr 时投票锁退回进程内互斥锁
# addr = "127.0.0.1:6379"
password = ""
db = 0

[kafka]
brokers = ["127.0.0.1:9092"]
topic = "detections"

[auth]
secret = "change-me-to-a-long-random-secret"

[log]
level = "info"
pretty = false

[bot]
reply_rate = 0.5
reply_burst = 3
workers = 4
page_timeout = "60s"
`
	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}
