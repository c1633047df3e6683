package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the daemon's TOML configuration.
type Config struct {
	RPCAddress  string `toml:"RPCAddress"`
	OpsAddress  string `toml:"OpsAddress"`
	DataDir     string `toml:"DataDir"`
	VenueURL    string `toml:"VenueURL"`
	NetworkName string `toml:"NetworkName"`

	Assets  AssetsConfig  `toml:"Assets"`
	Rewards RewardsConfig `toml:"Rewards"`
	Faucet  FaucetConfig  `toml:"Faucet"`
	Seeding SeedingConfig `toml:"Seeding"`
}

// AssetsConfig fixes the traded pair. The set is closed at startup.
type AssetsConfig struct {
	BaseSymbol  string `toml:"BaseSymbol"`
	QuoteSymbol string `toml:"QuoteSymbol"`
}

// RewardsConfig fixes the reward token and the per-qualifying-trade unit.
type RewardsConfig struct {
	Symbol string `toml:"Symbol"`
	Unit   string `toml:"Unit"`
}

// FaucetConfig holds the per-asset mint amounts and the period length used to
// derive the faucet epoch from wall-clock time.
type FaucetConfig struct {
	EpochSeconds uint32 `toml:"EpochSeconds"`
	BaseAmount   string `toml:"BaseAmount"`
	QuoteAmount  string `toml:"QuoteAmount"`
}

// SeedingConfig holds the one-time venue bootstrap amounts.
type SeedingConfig struct {
	BaseDeposit  string `toml:"BaseDeposit"`
	QuoteDeposit string `toml:"QuoteDeposit"`
	AskPrice     string `toml:"AskPrice"`
	AskQuantity  string `toml:"AskQuantity"`
	BidPrice     string `toml:"BidPrice"`
	BidQuantity  string `toml:"BidQuantity"`
	OrderExpiry  uint64 `toml:"OrderExpiry"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "dexledger-local"
	}
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8545"
	}
	if strings.TrimSpace(cfg.OpsAddress) == "" {
		cfg.OpsAddress = ":9090"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./dexledger-data"
	}
	if cfg.Faucet.EpochSeconds == 0 {
		cfg.Faucet.EpochSeconds = 86_400
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:  ":8545",
		OpsAddress:  ":9090",
		DataDir:     "./dexledger-data",
		VenueURL:    "http://127.0.0.1:8650",
		NetworkName: "dexledger-local",
		Assets: AssetsConfig{
			BaseSymbol:  "DEX",
			QuoteSymbol: "ZUSD",
		},
		Rewards: RewardsConfig{
			Symbol: "DRP",
			Unit:   "1",
		},
		Faucet: FaucetConfig{
			EpochSeconds: 86_400,
			BaseAmount:   "1000",
			QuoteAmount:  "100",
		},
		Seeding: SeedingConfig{
			BaseDeposit:  "1000000",
			QuoteDeposit: "500000",
			AskPrice:     "12",
			AskQuantity:  "1000",
			BidPrice:     "8",
			BidQuantity:  "1000",
			OrderExpiry:  86_400,
		},
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(cfg)
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Assets.BaseSymbol) == "" || strings.TrimSpace(c.Assets.QuoteSymbol) == "" {
		return fmt.Errorf("config: both asset symbols are required")
	}
	if strings.EqualFold(c.Assets.BaseSymbol, c.Assets.QuoteSymbol) {
		return fmt.Errorf("config: base and quote symbols must differ")
	}
	if strings.TrimSpace(c.Rewards.Symbol) == "" {
		return fmt.Errorf("config: reward symbol is required")
	}
	amounts := map[string]string{
		"Rewards.Unit":         c.Rewards.Unit,
		"Faucet.BaseAmount":    c.Faucet.BaseAmount,
		"Faucet.QuoteAmount":   c.Faucet.QuoteAmount,
		"Seeding.BaseDeposit":  c.Seeding.BaseDeposit,
		"Seeding.QuoteDeposit": c.Seeding.QuoteDeposit,
		"Seeding.AskPrice":     c.Seeding.AskPrice,
		"Seeding.AskQuantity":  c.Seeding.AskQuantity,
		"Seeding.BidPrice":     c.Seeding.BidPrice,
		"Seeding.BidQuantity":  c.Seeding.BidQuantity,
	}
	for field, raw := range amounts {
		if _, err := ParseAmount(raw); err != nil {
			return fmt.Errorf("config: %s: %w", field, err)
		}
	}
	if c.Faucet.EpochSeconds == 0 {
		return fmt.Errorf("config: Faucet.EpochSeconds must be positive")
	}
	return nil
}

// ParseAmount parses a decimal token amount, rejecting zero and negatives.
func ParseAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("amount required")
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %q", raw)
	}
	return amount, nil
}

// MustAmount parses a decimal amount already validated by Validate.
func MustAmount(raw string) *big.Int {
	amount, err := ParseAmount(raw)
	if err != nil {
		panic(err)
	}
	return amount
}
