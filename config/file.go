package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFile loads configuration from a .conf file.
// Format: key = value (one per line, # for comments). A missing file is
// not an error; it yields an empty map.
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets one config value by key.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Node
	case "node.url", "node":
		cfg.Node.URL = value
	case "node.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.Node.Timeout = d
	case "node.username":
		cfg.Node.Username = value
	case "node.password":
		cfg.Node.Password = value

	// Wallet
	case "wallet.prefix":
		cfg.Wallet.AddressPrefix = value
	case "wallet.representative":
		cfg.Wallet.DefaultRepresentative = value
	case "wallet.min_send_raw":
		cfg.Wallet.MinSendRaw = value
	case "wallet.receive_threshold_raw":
		cfg.Wallet.ReceiveThresholdRaw = value
	case "wallet.confirmation_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.Wallet.ConfirmationTimeout = d
	case "wallet.use_work_peers":
		cfg.Wallet.UseWorkPeers = parseBool(value)
	case "wallet.retry_max":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.Wallet.RetryMax = n
	case "wallet.retry_base":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.Wallet.RetryBase = d
	case "wallet.retry_backoff":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		cfg.Wallet.RetryBackoff = f

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		return fmt.Errorf("unknown config key")
	}
	return nil
}

// parseBool parses a boolean value leniently.
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
