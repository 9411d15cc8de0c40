package milvus

import (
	"errors"
	"time"
)

// Config Milvus 客户端配置
type Config struct {
	Address  string `mapstructure:"address" yaml:"address"`   // 服务地址 (host:port)
	Username string `mapstructure:"username" yaml:"username"` // 用户名（可选）
	Password string `mapstructure:"password" yaml:"password"` // 密码（可选）
	Database string `mapstructure:"database" yaml:"database"` // 数据库名，默认 default

	DialTimeout    time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`       // 连接超时
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"` // 请求超时

	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"` // 最大重试次数
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"` // 重试间隔
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Address == "" {
		return errors.New("milvus: address is required")
	}
	if c.DialTimeout < 0 {
		return errors.New("milvus: dial timeout must be non-negative")
	}
	if c.RequestTimeout < 0 {
		return errors.New("milvus: request timeout must be non-negative")
	}
	if c.MaxRetries < 0 {
		return errors.New("milvus: max retries must be non-negative")
	}
	if c.RetryDelay < 0 {
		return errors.New("milvus: retry delay must be non-negative")
	}
	return nil
}

// SetDefaults 填充未设置的默认值
func (c *Config) SetDefaults() {
	if c.Database == "" {
		c.Database = "default"
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	cfg := &Config{Address: "localhost:19530"}
	cfg.SetDefaults()
	return cfg
}
