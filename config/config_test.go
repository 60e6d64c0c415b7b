package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "absent.conf"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("values = %d, want 0", len(values))
	}
}

func TestLoadFile_ParsesKeyValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nanokit.conf")
	content := `# node settings
node.url = http://10.0.0.5:7076
node.timeout = 10s

wallet.use_work_peers = true
wallet.retry_max = 3
log.level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	cfg := Default()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.Node.URL != "http://10.0.0.5:7076" {
		t.Errorf("node.url = %s", cfg.Node.URL)
	}
	if cfg.Node.Timeout != 10*time.Second {
		t.Errorf("node.timeout = %s", cfg.Node.Timeout)
	}
	if !cfg.Wallet.UseWorkPeers {
		t.Error("wallet.use_work_peers should be true")
	}
	if cfg.Wallet.RetryMax != 3 {
		t.Errorf("wallet.retry_max = %d", cfg.Wallet.RetryMax)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %s (quotes should be stripped)", cfg.Log.Level)
	}
}

func TestLoadFile_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nanokit.conf")
	if err := os.WriteFile(path, []byte("not a key value line\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("malformed line should error")
	}
}

func TestApplyFileConfig_UnknownKey(t *testing.T) {
	cfg := Default()
	if err := ApplyFileConfig(cfg, map[string]string{"bogus.key": "1"}); err == nil {
		t.Error("unknown key should error")
	}
}

func TestValidate_Rejects(t *testing.T) {
	mutations := map[string]func(*Config){
		"empty url":       func(c *Config) { c.Node.URL = "" },
		"bad prefix":      func(c *Config) { c.Wallet.AddressPrefix = "ban_" },
		"bad rep":         func(c *Config) { c.Wallet.DefaultRepresentative = "nano_invalid" },
		"bad min send":    func(c *Config) { c.Wallet.MinSendRaw = "-1" },
		"bad threshold":   func(c *Config) { c.Wallet.ReceiveThresholdRaw = "abc" },
		"zero timeout":    func(c *Config) { c.Wallet.ConfirmationTimeout = 0 },
		"backoff too low": func(c *Config) { c.Wallet.RetryBackoff = 0.5 },
		"bad log level":   func(c *Config) { c.Log.Level = "verbose" },
	}
	for name, mutate := range mutations {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate should fail", name)
		}
	}
}

func TestWalletSettings(t *testing.T) {
	cfg := Default()
	cfg.Wallet.RetryMax = 7
	cfg.Wallet.ConfirmationTimeout = 12 * time.Second

	settings, err := cfg.WalletSettings()
	if err != nil {
		t.Fatalf("WalletSettings: %v", err)
	}
	if settings.Retry.MaxRetries != 7 {
		t.Errorf("retry max = %d", settings.Retry.MaxRetries)
	}
	if settings.ConfirmationTimeout != 12*time.Second {
		t.Errorf("confirmation timeout = %s", settings.ConfirmationTimeout)
	}
	if settings.MinSend.String() != cfg.Wallet.MinSendRaw {
		t.Errorf("min send = %s", settings.MinSend)
	}
	if settings.DefaultRepresentative.String() != cfg.Wallet.DefaultRepresentative {
		t.Errorf("representative = %s", settings.DefaultRepresentative)
	}
}
