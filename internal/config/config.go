package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-payments-engine/pkg/mysql"
)

const (
	StoreMemory = "memory"
	StoreMySQL  = "mysql"
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
	MySQL   mysql.Config  `yaml:"mysql"`
	GRPC    GRPCConfig    `yaml:"grpc"`
	Metrics MetricsConfig `yaml:"metrics"`
	Journal JournalConfig `yaml:"journal"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type StoreConfig struct {
	// memory 或 mysql
	Driver string `yaml:"driver"`
}

type GRPCConfig struct {
	Addr string `yaml:"addr"`
	// Sequencer 輸送帶容量
	QueueSize int `yaml:"queuesize"`
}

type MetricsConfig struct {
	// 空字串代表不啟動 /metrics
	Addr string `yaml:"addr"`
}

type JournalConfig struct {
	// 空字串代表不寫 journal
	Path string `yaml:"path"`
}

// Load 讀取 YAML 設定檔，檔案不存在時全部使用預設值
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyDefaults 補全預設配置 (如果 yaml 沒寫)
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = StoreMemory
	}
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":50051"
	}
	if c.GRPC.QueueSize == 0 {
		c.GRPC.QueueSize = 1000
	}
	if c.MySQL.Port == 0 {
		c.MySQL.Port = 3306
	}
	if c.MySQL.MaxOpenConns == 0 {
		c.MySQL.MaxOpenConns = 100
	}
	if c.MySQL.MaxIdleConns == 0 {
		c.MySQL.MaxIdleConns = 10
	}
	if c.MySQL.ConnMaxLifetime == 0 {
		c.MySQL.ConnMaxLifetime = 30 * time.Minute
	}
	if c.MySQL.MaxRetries == 0 {
		c.MySQL.MaxRetries = 10
	}
	if c.MySQL.RetryInterval == 0 {
		c.MySQL.RetryInterval = 2 * time.Second
	}
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory, StoreMySQL:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.GRPC.QueueSize < 0 {
		return fmt.Errorf("grpc.queuesize must not be negative")
	}
	return nil
}
