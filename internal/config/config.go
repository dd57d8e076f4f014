package config

import (
	"fmt"
	"time"

	"sitelog/pkg/config"
)

// ProgressConfig 进度评估与预警
type ProgressConfig struct {
	// 实际进度落后计划超过该百分点时发出 behind_schedule 预警
	AlertThreshold float64 `yaml:"alert_threshold"`
	SCurveSteps    int     `yaml:"scurve_steps"`
	// 计算 "今天" 使用的时区，空表示服务器本地时区
	Timezone string `yaml:"timezone"`
}

type OutboxConfig struct {
	IntervalMS int `yaml:"interval_ms"`
	BatchSize  int `yaml:"batch_size"`
	MaxRetries int `yaml:"max_retries"`
}

type WorkerConfig struct {
	MaxRetries int64 `yaml:"max_retries"`
	// 预警去重窗口（小时）
	DedupTTLHours int `yaml:"dedup_ttl_hours"`
	// 定时巡检间隔（分钟），0 关闭巡检
	SweepIntervalMin int `yaml:"sweep_interval_minutes"`
}

type Config struct {
	DB       config.DBConfig     `yaml:"db"`
	MQ       config.MQConfig     `yaml:"mq"`
	Redis    config.RedisConfig  `yaml:"redis"`
	Server   config.ServerConfig `yaml:"server"`
	OTel     config.OTelConfig   `yaml:"otel"`
	Progress ProgressConfig      `yaml:"progress"`
	Outbox   OutboxConfig        `yaml:"outbox"`
	Worker   WorkerConfig        `yaml:"worker"`
}

// Load 读取 CONFIG_DIR 下的多环境配置，环境由 CONFIG_ENV 指定
func Load() (*Config, error) {
	return LoadFrom(config.GetConfigEnv(), config.GetEnv("CONFIG_DIR", "config"))
}

func LoadFrom(env, dir string) (*Config, error) {
	cfgMap, err := config.LoadConfig(env, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := Default()
	if err := config.Decode(cfgMap, cfg); err != nil {
		return nil, err
	}

	// 传统环境变量优先级最高，兼容部署脚本
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideOTelFromEnv(&cfg.OTel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default 配置文件缺省项的默认值
func Default() *Config {
	return &Config{
		Server: config.ServerConfig{Port: "8080"},
		Progress: ProgressConfig{
			AlertThreshold: 5,
			SCurveSteps:    6,
		},
		Outbox: OutboxConfig{IntervalMS: 1000, BatchSize: 100, MaxRetries: 5},
		Worker: WorkerConfig{MaxRetries: 3, DedupTTLHours: 24, SweepIntervalMin: 60},
	}
}

func (c *Config) Validate() error {
	if c.Progress.AlertThreshold < 0 {
		return fmt.Errorf("progress.alert_threshold must be >= 0, got %v", c.Progress.AlertThreshold)
	}
	if c.Progress.SCurveSteps < 1 {
		return fmt.Errorf("progress.scurve_steps must be >= 1, got %d", c.Progress.SCurveSteps)
	}
	if _, err := c.Progress.Location(); err != nil {
		return err
	}
	if c.Outbox.IntervalMS <= 0 {
		return fmt.Errorf("outbox.interval_ms must be > 0, got %d", c.Outbox.IntervalMS)
	}
	if c.Outbox.BatchSize <= 0 {
		return fmt.Errorf("outbox.batch_size must be > 0, got %d", c.Outbox.BatchSize)
	}
	if c.Outbox.MaxRetries < 1 {
		return fmt.Errorf("outbox.max_retries must be >= 1, got %d", c.Outbox.MaxRetries)
	}
	return nil
}

// Location 解析 progress.timezone
func (p ProgressConfig) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid progress.timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

func (o OutboxConfig) Interval() time.Duration {
	return time.Duration(o.IntervalMS) * time.Millisecond
}

func (w WorkerConfig) DedupTTL() time.Duration {
	return time.Duration(w.DedupTTLHours) * time.Hour
}

func (w WorkerConfig) SweepInterval() time.Duration {
	return time.Duration(w.SweepIntervalMin) * time.Minute
}
