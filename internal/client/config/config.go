// Package config загружает настройки клиента: значения по умолчанию,
// файл конфигурации, переменные окружения STOCKKEEPER_* и флаги командной строки
// (в порядке возрастания приоритета).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "STOCKKEEPER"

// Ключи конфигурации
const (
	KeyServerURL           = "server_url"
	KeySocketURL           = "socket_url"
	KeyDBPath              = "db_path"
	KeyTimeout             = "timeout"
	KeyReconnectDelay      = "reconnect_delay"
	KeyOnlineCheckInterval = "online_check_interval"
	KeyOffline             = "offline"
	KeyLogLevel            = "log_level"
	KeyLogFormat           = "log_format"
	KeyLogFile             = "log_file"
)

// Config настройки клиента
type Config struct {
	ServerURL           string        `mapstructure:"server_url"`
	SocketURL           string        `mapstructure:"socket_url"`
	DBPath              string        `mapstructure:"db_path"`
	LogLevel            string        `mapstructure:"log_level"`
	LogFormat           string        `mapstructure:"log_format"`
	LogFile             string        `mapstructure:"log_file"`
	Timeout             time.Duration `mapstructure:"timeout"`
	ReconnectDelay      time.Duration `mapstructure:"reconnect_delay"`
	OnlineCheckInterval time.Duration `mapstructure:"online_check_interval"`
	Offline             bool          `mapstructure:"offline"`
}

// flagNames соответствие ключей и флагов
var flagNames = map[string]string{
	KeyServerURL:           "server",
	KeySocketURL:           "socket",
	KeyDBPath:              "db",
	KeyTimeout:             "timeout",
	KeyReconnectDelay:      "reconnect-delay",
	KeyOnlineCheckInterval: "online-check-interval",
	KeyOffline:             "offline",
	KeyLogLevel:            "log-level",
	KeyLogFormat:           "log-format",
	KeyLogFile:             "log-file",
}

// Default возвращает настройки по умолчанию
func Default() Config {
	return Config{
		ServerURL:           "http://localhost:2518",
		SocketURL:           "ws://localhost:2518/ws",
		DBPath:              "stockkeeper-client.db",
		Timeout:             10 * time.Second,
		ReconnectDelay:      3 * time.Second,
		OnlineCheckInterval: 30 * time.Second,
		LogLevel:            "warn",
		LogFormat:           "text",
	}
}

// RegisterFlags регистрирует флаги конфигурации
func RegisterFlags(flags *pflag.FlagSet) {
	def := Default()

	flags.String(flagNames[KeyServerURL], def.ServerURL, "server URL")
	flags.String(flagNames[KeySocketURL], def.SocketURL, "live update websocket URL")
	flags.String(flagNames[KeyDBPath], def.DBPath, "path to local database")
	flags.Duration(flagNames[KeyTimeout], def.Timeout, "HTTP request timeout")
	flags.Duration(flagNames[KeyReconnectDelay], def.ReconnectDelay, "delay before reconnecting the live channel")
	flags.Duration(flagNames[KeyOnlineCheckInterval], def.OnlineCheckInterval, "server reachability check interval (0 disables)")
	flags.Bool(flagNames[KeyOffline], def.Offline, "start in offline mode")
	flags.String(flagNames[KeyLogLevel], def.LogLevel, "log level (debug|info|warn|error)")
	flags.String(flagNames[KeyLogFormat], def.LogFormat, "log format (text|json)")
	flags.String(flagNames[KeyLogFile], def.LogFile, "log file (rotated); stderr when empty")
}

// Load собирает настройки. configFile может быть пустым: тогда ищется
// stockkeeper.{yaml,json,toml} в текущем каталоге и в каталоге настроек пользователя.
func Load(v *viper.Viper, flags *pflag.FlagSet, configFile string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagNames {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет настройки
func (c *Config) Validate() error {
	if err := checkURL(c.ServerURL, "http", "https"); err != nil {
		return fmt.Errorf("invalid %s: %w", KeyServerURL, err)
	}
	if err := checkURL(c.SocketURL, "ws", "wss"); err != nil {
		return fmt.Errorf("invalid %s: %w", KeySocketURL, err)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%s must not be empty", KeyDBPath)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyTimeout)
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("%s must be positive", KeyReconnectDelay)
	}
	if c.OnlineCheckInterval < 0 {
		return fmt.Errorf("%s must not be negative", KeyOnlineCheckInterval)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault(KeyServerURL, def.ServerURL)
	v.SetDefault(KeySocketURL, def.SocketURL)
	v.SetDefault(KeyDBPath, def.DBPath)
	v.SetDefault(KeyTimeout, def.Timeout)
	v.SetDefault(KeyReconnectDelay, def.ReconnectDelay)
	v.SetDefault(KeyOnlineCheckInterval, def.OnlineCheckInterval)
	v.SetDefault(KeyOffline, def.Offline)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyLogFormat, def.LogFormat)
	v.SetDefault(KeyLogFile, def.LogFile)
}

func readConfigFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigName("stockkeeper")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "stockkeeper"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%q must use one of the schemes %v", raw, schemes)
}
