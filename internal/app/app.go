package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/laneview/laneview/internal/clients/gemini"
	"github.com/laneview/laneview/internal/clients/marketdata"
	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/interfaces"
	"github.com/laneview/laneview/internal/services/analytics"
	"github.com/laneview/laneview/internal/services/company"
	"github.com/laneview/laneview/internal/services/mailer"
	"github.com/laneview/laneview/internal/services/metrics"
	"github.com/laneview/laneview/internal/storage"
)

// App holds all initialized services, clients and storage.
// It is the shared core behind cmd/laneview-server.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	Storage      interfaces.StorageManager
	MarketClient interfaces.MarketDataClient
	GeminiClient interfaces.GeminiClient
	Mailer       interfaces.Mailer
	Companies    interfaces.CompanyService
	Metrics      interfaces.MetricsService
	Analytics    interfaces.AnalyticsService
	StartupTime  time.Time

	warmCacheCancel context.CancelFunc
	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients and services from configuration.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, LANEVIEW_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("LANEVIEW_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "laneview.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/laneview.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to the binary directory
	for _, p := range []*string{&config.Storage.Internal.Path, &config.Storage.User.Path, &config.Storage.Market.Path} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(binDir, *p)
		}
	}

	// Initialize logger
	logger := common.NewLogger(config.Logging.Level)

	// Initialize storage
	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()

	// Purge stale derived data when the snapshot schema changes
	checkSchemaVersion(ctx, storageManager, logger)

	internalStore := storageManager.InternalStore()

	// Seed accounts when a users file is provided
	if usersFile := os.Getenv("LANEVIEW_USERS_FILE"); usersFile != "" {
		imported, skipped, err := ImportUsersFromFile(ctx, internalStore, logger, usersFile)
		if err != nil {
			logger.Warn().Err(err).Str("file", usersFile).Msg("User import failed")
		} else {
			logger.Info().Int("imported", imported).Int("skipped", skipped).Msg("User import complete")
		}
	}

	// Resolve API keys

	marketKey, err := common.ResolveAPIKey(ctx, internalStore, "marketdata_api_key", config.Clients.MarketData.APIKey)
	if err != nil {
		logger.Warn().Msg("Market data API key not configured - dashboard will serve cached data only")
	}

	geminiKey, err := common.ResolveAPIKey(ctx, internalStore, "gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - analytics will be unavailable")
	}

	// Initialize API clients. Declared as interfaces so an unconfigured
	// client stays nil through the nil checks in the services.
	var marketClient interfaces.MarketDataClient
	if marketKey != "" {
		marketClient = marketdata.NewClient(marketKey,
			marketdata.WithBaseURL(config.Clients.MarketData.BaseURL),
			marketdata.WithLogger(logger),
			marketdata.WithRateLimit(config.Clients.MarketData.RateLimit),
			marketdata.WithTimeout(config.Clients.MarketData.GetTimeout()),
		)
	}

	var geminiClient interfaces.GeminiClient
	if geminiKey != "" {
		client, err := gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			geminiClient = client
		}
	}

	mailService := mailer.NewService(config.Mail, logger)

	// Initialize services
	companyService := company.NewService(storageManager, logger)
	metricsService := metrics.NewService(storageManager, companyService, marketClient, logger)
	analyticsService := analytics.NewService(companyService, metricsService, geminiClient, logger)

	a := &App{
		Config:       config,
		Logger:       logger,
		Storage:      storageManager,
		MarketClient: marketClient,
		GeminiClient: geminiClient,
		Mailer:       mailService,
		Companies:    companyService,
		Metrics:      metricsService,
		Analytics:    analyticsService,
		StartupTime:  startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, cancel warm cache, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.warmCacheCancel != nil {
		a.warmCacheCancel()
		a.warmCacheCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// StartWarmCache launches the background cache warming goroutine.
func (a *App) StartWarmCache() {
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	a.warmCacheCancel = warmCancel
	go func() {
		defer warmCancel()
		warmSnapshots(warmCtx, a.Storage, a.Companies, a.Metrics, a.Logger)
	}()
}

// StartSnapshotScheduler launches the background snapshot refresh goroutine.
func (a *App) StartSnapshotScheduler() {
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	go startSnapshotScheduler(schedulerCtx, a.Storage, a.Companies, a.Metrics, a.Logger, common.FreshnessQuote)
}
