package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"MACross/internal/backtest"
	"MACross/internal/collector"
	"MACross/internal/config"
	"MACross/internal/httpcache"
	"MACross/internal/notifier"
	"MACross/internal/portfolio"
	"MACross/internal/scheduler"
	"MACross/internal/strategy"
)

// app holds the wired components for one process.
type app struct {
	cfg       *config.Config
	store     httpcache.Store
	purger    scheduler.Purger // nil when the cache is disabled
	collector *collector.Collector
	runner    *backtest.Runner
	notifier  notifier.Notifier
}

func newApp(cfg *config.Config) (*app, error) {
	var store httpcache.Store = httpcache.NewNoopStore()
	persistent := false
	if cfg.Cache.SQLitePath != "" {
		ss, err := httpcache.NewSQLiteStore(cfg.Cache.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init http cache failed, continuing without cache")
		} else {
			store = ss
			persistent = true
		}
	}
	cache := httpcache.NewTransport(collector.NewTransport(cfg.Proxy), store, cfg.Cache.ExpireAfter)
	var purger scheduler.Purger
	if persistent {
		purger = cache
	}

	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cache)
	} else {
		fetcher = collector.NewYahooFetcher(cache)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")

	start, err := cfg.StartDate()
	if err != nil {
		store.Close()
		return nil, err
	}
	end, err := cfg.EndDate()
	if err != nil {
		store.Close()
		return nil, err
	}
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, start, end)

	strat, err := strategy.NewMovingAverageCross(cfg.Strategy.ShortWindow, cfg.Strategy.LongWindow)
	if err != nil {
		store.Close()
		return nil, err
	}
	pf, err := portfolio.NewMarketOnClose(cfg.Portfolio.LotSize, cfg.Portfolio.InitialCapital)
	if err != nil {
		store.Close()
		return nil, err
	}

	var n notifier.Notifier = notifier.Noop{}
	if cfg.Telegram.BotToken != "" {
		n = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, collector.NewTransport(cfg.Proxy))
	}

	return &app{
		cfg:       cfg,
		store:     store,
		purger:    purger,
		collector: col,
		runner:    backtest.NewRunner(col, strat, pf, cfg.Portfolio.InitialCapital),
		notifier:  n,
	}, nil
}

func (a *app) Close() error {
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("close http cache: %w", err)
	}
	return nil
}
