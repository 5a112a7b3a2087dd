package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ConfigWatcher 配置监听器
// 监听配置文件变更并通知回调,用于热更新日志级别等非结构性设置
type ConfigWatcher struct {
	config     *Config
	configPath string
	viper      *viper.Viper
	callbacks  []func(*Config)
	mu         sync.RWMutex
	stopped    bool
	stopMu     sync.RWMutex
}

// NewConfigWatcher 创建配置监听器
func NewConfigWatcher(cfg *Config, configPath string) *ConfigWatcher {
	v := viper.New()
	v.SetConfigFile(configPath)

	return &ConfigWatcher{
		config:     cfg,
		configPath: configPath,
		viper:      v,
		callbacks:  make([]func(*Config), 0),
	}
}

// OnConfigChange 注册配置变更回调
func (w *ConfigWatcher) OnConfigChange(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start 启动配置监听
func (w *ConfigWatcher) Start() error {
	if err := w.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	w.viper.WatchConfig()
	w.viper.OnConfigChange(func(e fsnotify.Event) {
		w.stopMu.RLock()
		stopped := w.stopped
		w.stopMu.RUnlock()
		if stopped {
			return
		}

		var newCfg Config
		if err := w.viper.Unmarshal(&newCfg); err != nil {
			fmt.Printf("Failed to unmarshal config: %v\n", err)
			return
		}

		// 回调在锁外执行,避免死锁
		w.mu.RLock()
		callbacks := make([]func(*Config), len(w.callbacks))
		copy(callbacks, w.callbacks)
		w.mu.RUnlock()

		for _, callback := range callbacks {
			callback(&newCfg)
		}

		w.mu.Lock()
		w.config = &newCfg
		w.mu.Unlock()
	})

	return nil
}

// Stop 停止配置监听
func (w *ConfigWatcher) Stop() {
	w.stopMu.Lock()
	defer w.stopMu.Unlock()
	w.stopped = true
}

// GetConfig 获取当前配置
func (w *ConfigWatcher) GetConfig() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}
