// Package config handles CLI and application configuration.
//
// Settings load in three layers, each overriding the previous: built-in
// defaults, a key = value .conf file, then command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config holds all runtime settings for the nanokit CLI.
type Config struct {
	// Node is the RPC endpoint configuration.
	Node NodeConfig

	// Wallet holds per-wallet behavior settings.
	Wallet WalletConfig

	// Log holds logging settings.
	Log LogConfig
}

// NodeConfig holds the node RPC endpoint settings.
type NodeConfig struct {
	URL      string        `conf:"node.url"`
	Timeout  time.Duration `conf:"node.timeout"`
	Username string        `conf:"node.username"`
	Password string        `conf:"node.password"`
}

// WalletConfig holds wallet behavior settings.
type WalletConfig struct {
	// AddressPrefix selects the address encoding, "nano_" or "xrb_".
	AddressPrefix string `conf:"wallet.prefix"`
	// DefaultRepresentative is used when opening new account chains.
	DefaultRepresentative string `conf:"wallet.representative"`
	// MinSendRaw is the dust floor for sends, as a raw decimal string.
	MinSendRaw string `conf:"wallet.min_send_raw"`
	// ReceiveThresholdRaw is the minimum receivable worth claiming, as a
	// raw decimal string.
	ReceiveThresholdRaw string `conf:"wallet.receive_threshold_raw"`
	// ConfirmationTimeout bounds each confirmation wait.
	ConfirmationTimeout time.Duration `conf:"wallet.confirmation_timeout"`
	// UseWorkPeers asks the node to distribute work generation.
	UseWorkPeers bool `conf:"wallet.use_work_peers"`
	// RetryMax bounds send retries on stale-frontier rejections.
	RetryMax uint64 `conf:"wallet.retry_max"`
	// RetryBase is the delay before the first retry.
	RetryBase time.Duration `conf:"wallet.retry_base"`
	// RetryBackoff scales the delay between consecutive retries.
	RetryBackoff float64 `conf:"wallet.retry_backoff"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultConfigDir returns the platform-appropriate configuration
// directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Nanokit")
		}
		return filepath.Join(home, "Nanokit")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Nanokit")
	default:
		return filepath.Join(home, ".nanokit")
	}
}

// DefaultConfigFile returns the default .conf file path.
func DefaultConfigFile() string {
	return filepath.Join(DefaultConfigDir(), "nanokit.conf")
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Node: NodeConfig{
			URL:     "http://localhost:7076",
			Timeout: 30 * time.Second,
		},
		Wallet: WalletConfig{
			AddressPrefix:         "nano_",
			DefaultRepresentative: "nano_3msc38fyn67pgio16dj586pdrceahtn75qgnx7fy19wscixrc8dbb3abhbw6",
			MinSendRaw:            "1000000000000000000000000",
			ReceiveThresholdRaw:   "1000000000000000000000000",
			ConfirmationTimeout:   30 * time.Second,
			UseWorkPeers:          false,
			RetryMax:              5,
			RetryBase:             100 * time.Millisecond,
			RetryBackoff:          1.5,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
