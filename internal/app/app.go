package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/symphony/internal/clients/yahoo"
	"github.com/bobmcallan/symphony/internal/common"
	"github.com/bobmcallan/symphony/internal/interfaces"
	"github.com/bobmcallan/symphony/internal/mcp"
	"github.com/bobmcallan/symphony/internal/services/insights"
	"github.com/bobmcallan/symphony/internal/services/stock"
	"github.com/bobmcallan/symphony/internal/storage"
)

// App holds all initialized services, clients, and the MCP server.
// It is the shared core used by cmd/symphony-server.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	BlobStore       storage.BlobStore
	ChartClient     interfaces.ChartClient
	StockService    interfaces.StockService
	InsightsService interfaces.InsightsService
	MCPServer       *server.MCPServer
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath returns configPath, SYMPHONY_CONFIG, symphony.toml beside
// the binary, or config/symphony.toml, in that order.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("SYMPHONY_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "symphony.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/symphony.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and wires storage, clients and services.
// Missing mandatory settings are a startup error.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewAppWithConfig(context.Background(), config)
}

// NewAppWithConfig wires the application from an already-loaded config.
func NewAppWithConfig(ctx context.Context, config *common.Config) (*App, error) {
	startupStart := time.Now()

	if missing := config.ValidateRequired(); len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(getBinaryDir(), config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	blobStore, err := storage.NewBlobStore(ctx, logger, config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	chartClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	stockService := stock.NewService(chartClient, logger)
	insightsService := insights.NewService(blobStore, config.Storage.Prefix, logger)

	a := &App{
		Config:          config,
		Logger:          logger,
		BlobStore:       blobStore,
		ChartClient:     chartClient,
		StockService:    stockService,
		InsightsService: insightsService,
		MCPServer:       mcp.NewServer(stockService, insightsService, logger),
		StartupTime:     startupStart,
	}

	logger.Info().
		Str("storage", config.Storage.Backend).
		Str("prefix", config.Storage.Prefix).
		Dur("elapsed", time.Since(startupStart)).
		Msg("Application initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.BlobStore != nil {
		if err := a.BlobStore.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close blob store")
		}
	}
}
