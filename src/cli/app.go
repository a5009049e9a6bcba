package cli

import (
	"context"
	"fmt"
	"time"

	"stock-predictor/src/config"
	datasource "stock-predictor/src/data_source"
	"stock-predictor/src/data_source/alpaca"
	"stock-predictor/src/data_source/yahoo"
	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/network"
	"stock-predictor/src/scraper"
	"stock-predictor/src/service"
	"stock-predictor/src/storage"
	"stock-predictor/src/utils"
)

// App holds the wired components shared by every command.
type App struct {
	Config  *config.Config
	Logger  *logger.Logger
	Service *service.StockService
	Store   interfaces.IForecastStore
	Memory  *utils.MemoryManager
}

// -----------------------------------------------------------------------------

// NewApp loads the configuration and builds the component graph.
func NewApp(configPath string) (*App, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, err
	}
	appLogger := logger.NewLogger(cfg.MConfig, cfg.Name)

	// 1. Network managers: providers and scraped pages get their own timeouts
	dataNet := network.NewNetworkManager(cfg.MConfig, time.Duration(cfg.Network.RequestTimeout)*time.Second, appLogger.Named("network"))
	pageNet := network.NewNetworkManager(cfg.MConfig, time.Duration(cfg.Scraper.Timeout)*time.Second, appLogger.Named("scraper-network"))

	// 2. Market data, tried in configured order
	yahooSource := yahoo.NewYahooFinanceSource(cfg.MConfig, dataNet, appLogger)
	var sources []interfaces.IMarketData
	for _, name := range cfg.DataSource.Sources {
		switch name {
		case "yahoo":
			sources = append(sources, yahooSource)
		case "alpaca":
			if cfg.DataSource.Alpaca.APIKey == "" || cfg.DataSource.Alpaca.APISecret == "" {
				appLogger.Debug("Alpaca keys not set, skipping alpaca source")
				continue
			}
			sources = append(sources, alpaca.NewAlpacaSource(cfg.DataSource.Alpaca, appLogger))
		}
	}
	market := datasource.NewMultiSourceManager(sources, cfg.Network.MaxRetries, appLogger)

	// 3. Optional forecast store
	store, err := storage.NewForecastStore(cfg.MConfig, appLogger)
	if err != nil {
		return nil, err
	}

	// 4. Memory limit
	memory := utils.NewMemoryManager(cfg.MemoryLimitMB, appLogger.Named("memory"))

	svc := service.NewStockService(cfg.MConfig, service.Dependencies{
		Market:   market,
		Company:  yahooSource,
		News:     scraper.NewNewsScraper(pageNet, cfg.Scraper.NewsURL, appLogger),
		Trending: scraper.NewTrendingScraper(pageNet, cfg.Scraper.TrendingURL, appLogger),
		Store:    store,
		Memory:   memory,
	}, appLogger)

	appLogger.Info("Data sources: %v", market.SourceNames())
	return &App{
		Config:  cfg,
		Logger:  appLogger,
		Service: svc,
		Store:   store,
		Memory:  memory,
	}, nil
}

// -----------------------------------------------------------------------------

// StartMaintenance schedules forecast retention cleanup when a store is open.
func (a *App) StartMaintenance(ctx context.Context) (*utils.MaintenanceScheduler, error) {
	if a.Store == nil || a.Config.Storage.CleanupSchedule == "" {
		return nil, nil
	}

	scheduler := utils.NewMaintenanceScheduler(ctx, a.Logger.Named("maintenance"))
	err := scheduler.Register(a.Config.Storage.CleanupSchedule, "forecast-retention", 5*time.Minute, func(ctx context.Context) error {
		removed, err := a.Store.CleanupOldData(ctx)
		if err != nil {
			return err
		}
		a.Logger.Info("Removed %d expired forecasts", removed)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule retention cleanup: %w", err)
	}
	scheduler.Start()
	return scheduler, nil
}

// -----------------------------------------------------------------------------

func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warning("Failed to close forecast store: %v", err)
		}
	}
}
