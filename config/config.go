// Package config 提供 go-dnssd 的配置管理
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Config 追踪器配置
//
// ServiceType 为必填项，其余字段零值时使用默认值。
type Config struct {
	// ServiceType 要浏览的服务类型，如 "_ipp._tcp"
	ServiceType string `json:"service_type"`

	// Domain 浏览域，默认 "local"
	Domain string `json:"domain,omitempty"`

	// DebounceWindow 服务消失的去抖窗口
	//
	// 窗口内先消失又重现的服务不会产生 lost 事件。
	// 0 表示消失立即确认。
	DebounceWindow Duration `json:"debounce_window,omitempty"`

	// ResolveTimeout 单次解析超时
	ResolveTimeout Duration `json:"resolve_timeout,omitempty"`

	// QueryInterval 内置浏览器的查询周期
	QueryInterval Duration `json:"query_interval,omitempty"`

	// LossThreshold 连续缺席多少个查询周期后判定服务消失
	LossThreshold int `json:"loss_threshold,omitempty"`

	// EnableIPv6 是否同时查询 IPv6
	EnableIPv6 bool `json:"enable_ipv6,omitempty"`
}

// DefaultConfig 返回默认配置
//
// ServiceType 仍需调用方填写。
func DefaultConfig() Config {
	return Config{
		Domain:         "local",                     // 浏览域：mDNS 标准域
		DebounceWindow: 0,                           // 去抖窗口：默认关闭，消失立即确认
		ResolveTimeout: Duration(5 * time.Second),   // 解析超时：5 秒
		QueryInterval:  Duration(10 * time.Second),  // 查询周期：10 秒
		LossThreshold:  3,                           // 判失阈值：连续缺席 3 轮
		EnableIPv6:     false,                       // IPv6：默认关闭，与内置浏览器一致
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.ServiceType == "" {
		return errors.New("service type must not be empty")
	}
	if c.DebounceWindow < 0 {
		return errors.New("debounce window must be non-negative")
	}
	if c.ResolveTimeout <= 0 {
		return errors.New("resolve timeout must be positive")
	}
	if c.QueryInterval <= 0 {
		return errors.New("query interval must be positive")
	}
	if c.LossThreshold <= 0 {
		return errors.New("loss threshold must be positive")
	}
	return nil
}

// WithDebounceWindow 设置去抖窗口
func (c Config) WithDebounceWindow(window time.Duration) Config {
	c.DebounceWindow = Duration(window)
	return c
}

// WithResolveTimeout 设置解析超时
func (c Config) WithResolveTimeout(timeout time.Duration) Config {
	c.ResolveTimeout = Duration(timeout)
	return c
}

// Load 从 JSON 文件加载配置
//
// 文件中未出现的字段保持默认值，加载后立即验证。
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
