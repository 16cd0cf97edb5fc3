package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"paperdesk/internal/logger"
)

// Watch 监听配置文件变更并在每次有效重载后调用 onChange。
// Reload failures keep the previous config; only the log level is expected
// to change at runtime, everything else requires a restart.
func Watch(path string, onChange func(*Config)) error {
	if strings.TrimSpace(path) == "" || onChange == nil {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			logger.Errorf("config reload failed: %v", err)
			return
		}
		cfg, err := decode(v)
		if err != nil {
			logger.Errorf("config reload failed: %v", err)
			return
		}
		cfg.applyDefaults()
		if err := validate(cfg); err != nil {
			logger.Errorf("config reload rejected: %v", err)
			return
		}
		logger.Infof("config reloaded (%s)", evt.Name)
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}
