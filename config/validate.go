package config

import (
	"fmt"
	"net/url"

	"github.com/nanokit/nanokit/pkg/raw"
	"github.com/nanokit/nanokit/pkg/types"
	"github.com/nanokit/nanokit/pkg/wallet"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Node.URL == "" {
		return fmt.Errorf("node.url must not be empty")
	}
	if _, err := url.Parse(c.Node.URL); err != nil {
		return fmt.Errorf("node.url: %w", err)
	}
	if c.Node.Timeout <= 0 {
		return fmt.Errorf("node.timeout must be positive")
	}

	switch c.Wallet.AddressPrefix {
	case types.PrefixNano, types.PrefixXrb:
	default:
		return fmt.Errorf("wallet.prefix must be %q or %q", types.PrefixNano, types.PrefixXrb)
	}
	if _, err := types.ParseAddress(c.Wallet.DefaultRepresentative); err != nil {
		return fmt.Errorf("wallet.representative: %w", err)
	}
	if _, err := raw.FromRaw(c.Wallet.MinSendRaw); err != nil {
		return fmt.Errorf("wallet.min_send_raw: %w", err)
	}
	if _, err := raw.FromRaw(c.Wallet.ReceiveThresholdRaw); err != nil {
		return fmt.Errorf("wallet.receive_threshold_raw: %w", err)
	}
	if c.Wallet.ConfirmationTimeout <= 0 {
		return fmt.Errorf("wallet.confirmation_timeout must be positive")
	}
	if c.Wallet.RetryBackoff < 1 {
		return fmt.Errorf("wallet.retry_backoff must be at least 1")
	}
	if c.Wallet.RetryBase <= 0 {
		return fmt.Errorf("wallet.retry_base must be positive")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	return nil
}

// WalletSettings converts the validated settings into a wallet configuration.
func (c *Config) WalletSettings() (wallet.Config, error) {
	if err := c.Validate(); err != nil {
		return wallet.Config{}, err
	}
	rep, err := types.ParseAddress(c.Wallet.DefaultRepresentative)
	if err != nil {
		return wallet.Config{}, err
	}
	minSend, err := raw.FromRaw(c.Wallet.MinSendRaw)
	if err != nil {
		return wallet.Config{}, err
	}
	threshold, err := raw.FromRaw(c.Wallet.ReceiveThresholdRaw)
	if err != nil {
		return wallet.Config{}, err
	}
	return wallet.Config{
		DefaultRepresentative: rep,
		UseWorkPeers:          c.Wallet.UseWorkPeers,
		MinSend:               minSend,
		ReceiveThreshold:      threshold,
		ConfirmationTimeout:   c.Wallet.ConfirmationTimeout,
		Retry: wallet.RetryPolicy{
			MaxRetries: c.Wallet.RetryMax,
			Base:       c.Wallet.RetryBase,
			Backoff:    c.Wallet.RetryBackoff,
		},
	}, nil
}
