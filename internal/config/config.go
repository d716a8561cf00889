// Package config loads originhttpd's startup configuration: listen port,
// backlog, worker count, document root, server signature, daemon/debug
// flags, and ambient knobs such as the admin sidecar port, timeouts,
// and the CGI concurrency cap.
package config

import (
	"fmt"
	"log"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds every value the core receives as plain startup arguments.
type Config struct {
	ListenPort             int    `mapstructure:"listen_port"`
	MaxClients             int    `mapstructure:"max_clients"`
	NumThreads             int    `mapstructure:"num_threads"`
	ServerRoot             string `mapstructure:"server_root"`
	ServerSignature        string `mapstructure:"server_signature"`
	Daemon                 bool   `mapstructure:"daemon"`
	Debug                  bool   `mapstructure:"debug"`
	ReceiveTimeoutSeconds  int    `mapstructure:"receive_timeout_seconds"`
	AdminPort              int    `mapstructure:"admin_port"`
	ShutdownDrainSeconds   int    `mapstructure:"shutdown_drain_seconds"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
	CgiMaxConcurrent       int    `mapstructure:"cgi_max_concurrent"`
	LogFile                string `mapstructure:"log_file"`
}

// Load reads configuration from config.toml, falling back to defaults for
// anything the file omits. A missing file is not an error: defaults alone
// produce a runnable server.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("listen_port", 8080)
	viper.SetDefault("max_clients", 128)
	viper.SetDefault("num_threads", 0)
	viper.SetDefault("server_root", "./www")
	viper.SetDefault("server_signature", "originhttpd/1.0")
	viper.SetDefault("daemon", false)
	viper.SetDefault("debug", false)
	viper.SetDefault("receive_timeout_seconds", 15)
	viper.SetDefault("admin_port", 9090)
	viper.SetDefault("shutdown_drain_seconds", 2)
	viper.SetDefault("shutdown_timeout_seconds", 10)
	viper.SetDefault("cgi_max_concurrent", 16)
	viper.SetDefault("log_file", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Printf("INFO:  no config.toml found, using defaults")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.NumThreads <= 0 {
		cfg.NumThreads = runtime.NumCPU()
		log.Printf("INFO:  num_threads <= 0, auto-detected %d (NumCPU)", cfg.NumThreads)
	}
	if cfg.MaxClients <= 0 {
		log.Printf("WARN:  max_clients <= 0 (%d), defaulting to 128", cfg.MaxClients)
		cfg.MaxClients = 128
	}
	if cfg.CgiMaxConcurrent <= 0 {
		log.Printf("WARN:  cgi_max_concurrent <= 0 (%d), defaulting to 16", cfg.CgiMaxConcurrent)
		cfg.CgiMaxConcurrent = 16
	}

	log.Printf("INFO:  Configuration loaded successfully from %s", configFileUsed())
	log.Printf("INFO:    listen_port: %d", cfg.ListenPort)
	log.Printf("INFO:    max_clients: %d", cfg.MaxClients)
	log.Printf("INFO:    num_threads: %d", cfg.NumThreads)
	log.Printf("INFO:    server_root: %s", cfg.ServerRoot)
	log.Printf("INFO:    server_signature: %s", cfg.ServerSignature)
	log.Printf("INFO:    daemon: %v", cfg.Daemon)
	log.Printf("INFO:    debug: %v", cfg.Debug)
	log.Printf("INFO:    admin_port: %d", cfg.AdminPort)
	log.Printf("INFO:    cgi_max_concurrent: %d", cfg.CgiMaxConcurrent)

	return &cfg, nil
}

func configFileUsed() string {
	if f := viper.ConfigFileUsed(); f != "" {
		return f
	}
	return "(defaults only)"
}
