// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads and validates the trading agent's configuration the
// way the teacher's cmd/simulator/config package does: a pflag.FlagSet bound
// into a viper.Viper that also reads SNIPER_-prefixed environment variables
// and an optional JSON config file, collapsed into an immutable Config value
// after validation (spec §6).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrConfigInvalid is returned (wrapped) for every validation failure spec
// §7 classifies as configuration-invalid: bad commitment, endpoint count
// mismatch, missing credentials. It is fatal at startup.
var ErrConfigInvalid = errors.New("configuration invalid")

// Commitment is a durability tier for block observation (spec GLOSSARY).
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

func (c Commitment) valid() bool {
	switch c {
	case CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized:
		return true
	default:
		return false
	}
}

// ExecutorMode selects the transaction executor variant (spec §4.3).
type ExecutorMode string

const (
	ExecutorDefault ExecutorMode = "default"
	ExecutorWarp    ExecutorMode = "warp"
	ExecutorBundle  ExecutorMode = "bundle"
)

func (m ExecutorMode) valid() bool {
	switch m {
	case ExecutorDefault, ExecutorWarp, ExecutorBundle:
		return true
	default:
		return false
	}
}

// Config is the immutable, validated trade configuration (spec §3 "Trade
// configuration"). Every field here corresponds to a row of spec §6's
// configuration options table.
type Config struct {
	RPCEndpoints       []string
	WSEndpoints        []string
	Commitment         Commitment
	WalletPath         string
	WalletBase58       string

	QuoteMint   string
	QuoteAmount float64

	MinPoolSize float64
	MaxPoolSize float64

	CheckRenounced   bool
	CheckFreezable   bool
	CheckBurned      bool
	CheckFromPumpFun bool

	UseSnipeList bool
	UseAvoidList bool
	SnipeListPath string
	AvoidListPath string

	AutoSell bool

	AutoBuyDelayMS  int
	AutoSellDelayMS int

	MaxBuyRetries  int
	MaxSellRetries int

	UnitLimit uint32
	UnitPrice uint64

	TakeProfitPct float64
	StopLossPct   float64

	BuySlippagePct  float64
	SellSlippagePct float64

	PriceCheckIntervalMS int
	PriceCheckDurationMS int

	FilterCheckIntervalMS int
	FilterCheckDurationMS int
	ConsecutiveMatchCount int

	OneTokenAtATime bool

	Executor ExecutorMode

	LogLevel string
	LogFile  string

	CacheMarkets      bool
	ConstantProductPoolProgram string
	AllowDevnetCPMM   bool
}

// BuildFlagSet declares every flag this process accepts. Mirrors the
// teacher's config.BuildFlagSet shape (one pflag.FlagSet, bound by viper).
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("sniper", pflag.ContinueOnError)

	fs.String("rpc-endpoints", "", "pipe-delimited list of HTTPS RPC endpoints")
	fs.String("ws-endpoints", "", "pipe-delimited list of WSS endpoints, count must match rpc-endpoints")
	fs.String("commitment", string(CommitmentConfirmed), "processed|confirmed|finalized")
	fs.String("wallet-path", "", "path to a 64-byte JSON secret key file")
	fs.String("wallet-base58", "", "base58-encoded 64-byte secret key")

	fs.String("quote-mint", "", "address of the quote token mint")
	fs.Float64("quote-amount", 0, "quote amount per trade, in quote-asset units")

	fs.Float64("min-pool-size", 0, "minimum quote vault balance, native units")
	fs.Float64("max-pool-size", 0, "maximum quote vault balance, native units")

	fs.Bool("check-renounced", false, "require mint authority renounced")
	fs.Bool("check-freezable", false, "reject mints with a freeze authority")
	fs.Bool("check-burned", false, "require LP supply burnt")
	fs.Bool("check-from-pump-fun", false, "require pump.fun origin")

	fs.Bool("use-snipe-list", false, "only buy base mints present in the allow list")
	fs.Bool("use-avoid-list", false, "never buy base mints present in the deny list")
	fs.String("snipe-list-path", "snipe-list.txt", "allow list file path")
	fs.String("avoid-list-path", "avoid-list.txt", "deny list file path")

	fs.Bool("auto-sell", false, "enable the wallet subscription and sell path")

	fs.Int("auto-buy-delay-ms", 0, "pre-buy sleep, milliseconds")
	fs.Int("auto-sell-delay-ms", 0, "pre-sell sleep, milliseconds")

	fs.Int("max-buy-retries", 3, "buy submission retry upper bound")
	fs.Int("max-sell-retries", 3, "sell submission retry upper bound")

	fs.Uint32("unit-limit", 101337, "compute unit limit (Default executor only)")
	fs.Uint64("unit-price", 421197, "compute unit price, micro-lamports (Default executor only)")

	fs.Float64("take-profit-pct", 40, "take-profit percent of quote amount")
	fs.Float64("stop-loss-pct", 20, "stop-loss percent of quote amount")

	fs.Float64("buy-slippage-pct", 5, "buy slippage tolerance percent")
	fs.Float64("sell-slippage-pct", 5, "sell slippage tolerance percent")

	fs.Int("price-check-interval-ms", 2000, "price watcher poll interval, 0 disables")
	fs.Int("price-check-duration-ms", 600000, "price watcher poll window, 0 disables")

	fs.Int("filter-check-interval-ms", 2000, "filter engine poll interval, 0 disables")
	fs.Int("filter-check-duration-ms", 20000, "filter engine poll window, 0 disables")
	fs.Int("consecutive-match-count", 3, "consecutive filter passes required")

	fs.Bool("one-token-at-a-time", true, "serialize buys and sells")

	fs.String("executor", string(ExecutorDefault), "default|warp|bundle")

	fs.String("log-level", "info", "trace|debug|info|warn|error|crit")
	fs.String("log-file", "", "optional rotating log file path")

	fs.Bool("cache-markets", true, "populate market storage from market subscription events")
	fs.String("cpmm-program", "", "constant-product pool program id (devnet only)")
	fs.Bool("allow-devnet-cpmm", false, "enable the constant-product-pool subscription")

	fs.String("config-file", "", "optional JSON config file")

	return fs
}

// BuildViper binds fs, environment variables prefixed SNIPER_, and an
// optional JSON config file named by --config-file.
func BuildViper(fs *pflag.FlagSet, args []string) (*viper.Viper, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("SNIPER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if cfgFile := v.GetString("config-file"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: reading config file %s: %v", ErrConfigInvalid, cfgFile, err)
		}
	}
	return v, nil
}

// BuildConfig validates v's contents and returns an immutable Config, or a
// wrapped ErrConfigInvalid.
func BuildConfig(v *viper.Viper) (Config, error) {
	rpc := splitPipe(v.GetString("rpc-endpoints"))
	ws := splitPipe(v.GetString("ws-endpoints"))

	c := Config{
		RPCEndpoints:  rpc,
		WSEndpoints:   ws,
		Commitment:    Commitment(v.GetString("commitment")),
		WalletPath:    v.GetString("wallet-path"),
		WalletBase58:  v.GetString("wallet-base58"),

		QuoteMint:   v.GetString("quote-mint"),
		QuoteAmount: v.GetFloat64("quote-amount"),

		MinPoolSize: v.GetFloat64("min-pool-size"),
		MaxPoolSize: v.GetFloat64("max-pool-size"),

		CheckRenounced:   v.GetBool("check-renounced"),
		CheckFreezable:   v.GetBool("check-freezable"),
		CheckBurned:      v.GetBool("check-burned"),
		CheckFromPumpFun: v.GetBool("check-from-pump-fun"),

		UseSnipeList:  v.GetBool("use-snipe-list"),
		UseAvoidList:  v.GetBool("use-avoid-list"),
		SnipeListPath: v.GetString("snipe-list-path"),
		AvoidListPath: v.GetString("avoid-list-path"),

		AutoSell: v.GetBool("auto-sell"),

		AutoBuyDelayMS:  v.GetInt("auto-buy-delay-ms"),
		AutoSellDelayMS: v.GetInt("auto-sell-delay-ms"),

		MaxBuyRetries:  v.GetInt("max-buy-retries"),
		MaxSellRetries: v.GetInt("max-sell-retries"),

		UnitLimit: uint32(v.GetUint32("unit-limit")),
		UnitPrice: v.GetUint64("unit-price"),

		TakeProfitPct: v.GetFloat64("take-profit-pct"),
		StopLossPct:   v.GetFloat64("stop-loss-pct"),

		BuySlippagePct:  v.GetFloat64("buy-slippage-pct"),
		SellSlippagePct: v.GetFloat64("sell-slippage-pct"),

		PriceCheckIntervalMS: v.GetInt("price-check-interval-ms"),
		PriceCheckDurationMS: v.GetInt("price-check-duration-ms"),

		FilterCheckIntervalMS: v.GetInt("filter-check-interval-ms"),
		FilterCheckDurationMS: v.GetInt("filter-check-duration-ms"),
		ConsecutiveMatchCount: v.GetInt("consecutive-match-count"),

		OneTokenAtATime: v.GetBool("one-token-at-a-time"),

		Executor: ExecutorMode(v.GetString("executor")),

		LogLevel: v.GetString("log-level"),
		LogFile:  v.GetString("log-file"),

		CacheMarkets:               v.GetBool("cache-markets"),
		ConstantProductPoolProgram: v.GetString("cpmm-program"),
		AllowDevnetCPMM:            v.GetBool("allow-devnet-cpmm"),
	}

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if len(c.RPCEndpoints) == 0 {
		return fmt.Errorf("%w: rpc-endpoints is required", ErrConfigInvalid)
	}
	if len(c.WSEndpoints) != len(c.RPCEndpoints) {
		return fmt.Errorf("%w: ws-endpoints count (%d) must match rpc-endpoints count (%d)", ErrConfigInvalid, len(c.WSEndpoints), len(c.RPCEndpoints))
	}
	if !c.Commitment.valid() {
		return fmt.Errorf("%w: unknown commitment %q", ErrConfigInvalid, c.Commitment)
	}
	if c.WalletPath == "" && c.WalletBase58 == "" {
		return fmt.Errorf("%w: one of wallet-path or wallet-base58 is required", ErrConfigInvalid)
	}
	if c.QuoteMint == "" {
		return fmt.Errorf("%w: quote-mint is required", ErrConfigInvalid)
	}
	if !c.Executor.valid() {
		return fmt.Errorf("%w: unknown executor mode %q", ErrConfigInvalid, c.Executor)
	}
	if c.AllowDevnetCPMM && c.ConstantProductPoolProgram == "" {
		return fmt.Errorf("%w: cpmm-program is required when allow-devnet-cpmm is set", ErrConfigInvalid)
	}
	return nil
}

func splitPipe(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
