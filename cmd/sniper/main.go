// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command sniper is the trading agent's entrypoint: it wires every
// collaborator package together (config, logging, wallet, endpoint pool,
// list caches, storage, subscription layer, filter engine, executor, swap
// helper, price watcher, coordinator) and runs the event loop driving the
// buy and sell paths from subscription events until terminated.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/luxfi/solsniper/chain"
	"github.com/luxfi/solsniper/config"
	"github.com/luxfi/solsniper/coordinator"
	"github.com/luxfi/solsniper/executor"
	"github.com/luxfi/solsniper/filters"
	"github.com/luxfi/solsniper/listcache"
	"github.com/luxfi/solsniper/log"
	"github.com/luxfi/solsniper/metrics"
	"github.com/luxfi/solsniper/pricewatch"
	"github.com/luxfi/solsniper/rpcpool"
	"github.com/luxfi/solsniper/storage"
	"github.com/luxfi/solsniper/subscription"
	"github.com/luxfi/solsniper/swap"
	"github.com/luxfi/solsniper/walletkit"
)

func main() {
	// SkipFlagParsing: the process's actual flags are pflags, bound through
	// config.BuildViper (so SNIPER_-prefixed env vars and the optional JSON
	// config file behave identically); urfave/cli only supplies the command
	// shell (name, usage, exit-code translation) and hands the raw argv
	// through untouched.
	app := &cli.App{
		Name:            "sniper",
		Usage:           "Solana liquidity-pool sniping and trading agent",
		SkipFlagParsing: true,
		Action: func(cliCtx *cli.Context) error {
			return run(cliCtx.Args().Slice())
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "sniper:", err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if isConfigInvalid(err) {
		return 2
	}
	return 1
}

func isConfigInvalid(err error) bool {
	return errors.Is(err, config.ErrConfigInvalid)
}

func run(args []string) error {
	fs := config.BuildFlagSet()
	v, err := config.BuildViper(fs, args)
	if err != nil {
		return err
	}
	cfg, err := config.BuildConfig(v)
	if err != nil {
		return err
	}

	installLogger(cfg)
	log.Info("sniper: starting", "executor", cfg.Executor, "commitment", cfg.Commitment)

	payer, err := walletkit.Load(cfg.WalletPath, cfg.WalletBase58)
	if err != nil {
		return err
	}
	log.Info("sniper: wallet loaded", "pubkey", payer.PublicKey().String())

	pool, err := rpcpool.FromConfig(cfg, time.Now().UnixNano())
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var allowList, denyList *listcache.Cache
	if cfg.UseSnipeList {
		allowList = listcache.New(cfg.SnipeListPath)
		if err := allowList.Init(); err != nil {
			return err
		}
		defer allowList.Close()
	}
	if cfg.UseAvoidList {
		denyList = listcache.New(cfg.AvoidListPath, listcache.AppendOnly(true))
		if err := denyList.Init(); err != nil {
			return err
		}
		defer denyList.Close()
	}

	reader := chain.NewReader(pool)

	markets := storage.NewMarketStore(nil)
	pools := storage.NewPoolStore(nil)

	engine := buildFilterEngine(cfg, reader, m)

	var exec executor.Executor
	switch cfg.Executor {
	case config.ExecutorWarp:
		return fmt.Errorf("%w: warp executor requires an external relay, not configured in this build", config.ErrConfigInvalid)
	case config.ExecutorBundle:
		return fmt.Errorf("%w: bundle executor requires an external relay, not configured in this build", config.ErrConfigInvalid)
	default:
		exec = executor.NewDefault(pool, m)
	}

	swapHelper := swap.NewHelper(reader, reader)
	priceWatcher := pricewatch.New(reader, m)

	coord := coordinator.New(cfg, pool, allowList, denyList, engine, exec, markets, pools, swapHelper, priceWatcher, payer, m)

	subs := subscription.New(pool.Current().WSURL, reader, reader, reader, reader)
	subCfg := &subscription.Config{
		QuoteMint:                cfg.QuoteMint,
		EnableMarketSubscription: cfg.CacheMarkets,
		EnableCPMMSubscription:   cfg.AllowDevnetCPMM,
		CPMMProgram:              cfg.ConstantProductPoolProgram,
		EnableWalletSubscription: cfg.AutoSell,
		WalletPublicKey:          payer.PublicKey().String(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("sniper: shutdown signal received")
		cancel()
	}()

	if err := subs.Start(ctx, subCfg); err != nil {
		return err
	}
	defer subs.Stop(context.Background())

	runEventLoop(ctx, coord, subs, markets)
	log.Info("sniper: shut down cleanly")
	return nil
}

func buildFilterEngine(cfg config.Config, reader *chain.Reader, m *metrics.Metrics) *filters.Engine {
	var fs []filters.Filter
	if cfg.CheckBurned {
		fs = append(fs, filters.NewBurntLiquidityFilter(reader))
	}
	if cfg.CheckRenounced {
		fs = append(fs, filters.NewRenouncedMintAuthorityFilter(reader))
	}
	if cfg.CheckFreezable {
		fs = append(fs, filters.NewFreezableFilter(reader))
	}
	if cfg.MinPoolSize > 0 || cfg.MaxPoolSize > 0 {
		fs = append(fs, filters.NewPoolSizeFilter(reader, cfg.MinPoolSize, cfg.MaxPoolSize))
	}
	if cfg.CheckFromPumpFun {
		fs = append(fs, filters.NewPumpFunOriginFilter(reader))
	}
	return filters.New(m, fs...)
}

// runEventLoop dispatches pool/market/wallet events to the coordinator until
// ctx is cancelled. Market events populate Market Storage directly when
// cacheMarkets is enabled (spec §4.5.2); pool and wallet events drive the
// buy and sell paths, each in its own goroutine so a slow trade never stalls
// the event loop (oneTokenAtATime bookkeeping inside the coordinator
// provides the serialization the spec actually requires).
func runEventLoop(ctx context.Context, coord *coordinator.Coordinator, subs *subscription.Layer, markets *storage.MarketStore) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-subs.PoolEvents:
			go coord.Buy(ctx, ev.AccountID, ev.Pool, subs)
		case ev := <-subs.MarketEvents:
			markets.Save(ev.MarketID.String(), ev.Market)
		case ev := <-subs.WalletEvents:
			go coord.Sell(ctx, ev.TokenAccountID, ev, subs)
		}
	}
}

func installLogger(cfg config.Config) {
	lvl, err := log.LvlFromString(cfg.LogLevel)
	if err != nil {
		lvl = log.LevelInfo
	}
	handler := log.NewTerminalHandler(os.Stderr)
	if cfg.LogFile != "" {
		handler = log.NewFileHandler(cfg.LogFile, 100, 5, 30)
	}
	log.SetDefault(log.NewLogger(log.LvlFilterHandler(lvl, handler)))
}
