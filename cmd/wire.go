package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	cachesqlite "github.com/agentdeck/agentdeck/internal/adapters/cache/sqlite"
	"github.com/agentdeck/agentdeck/internal/adapters/gateway"
	statusadapter "github.com/agentdeck/agentdeck/internal/adapters/render/status"
	"github.com/agentdeck/agentdeck/internal/application"
	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/ports"
)

const (
	configDirName  = ".agentdeck"
	configFileName = "config"
	configFileType = "toml"

	gatewayURLKey     = "gateway.url"
	gatewayTimeoutKey = "gateway.timeout"
	pollIntervalKey   = "poll.interval"
	cachePathKey      = "cache.path"

	defaultGatewayURL     = "http://127.0.0.1:8765"
	defaultGatewayTimeout = 10 * time.Second
)

type app struct {
	store          *application.SyncStore
	cache          *cachesqlite.Store
	statusRenderer func(application.Overview, statusadapter.RenderOptions) (string, error)
	pollInterval   time.Duration
	now            func() time.Time
}

func wireApp() (*app, error) {
	cfg, err := loadConfig(viper.New())
	if err != nil {
		return nil, err
	}

	gatewayURL := envOrDefault("AGENTDECK_GATEWAY_URL", cfg.GetString(gatewayURLKey))
	if gatewayURL == "" {
		return nil, errors.New("gateway url is empty")
	}

	remote := &gateway.Client{
		BaseURL:        gatewayURL,
		HTTPClient:     http.DefaultClient,
		RequestTimeout: cfg.GetDuration(gatewayTimeoutKey),
	}

	cachePath := envOrDefault("AGENTDECK_CACHE_PATH", cfg.GetString(cachePathKey))
	cache, err := cachesqlite.Open(cachePath)
	if err != nil {
		return nil, fmt.Errorf("wire cache store: %w", err)
	}

	store := application.NewSyncStore(remote, cache, ports.SystemClock{})
	store.SetOnSendError(func(msg domain.Message, err error) {
		fmt.Fprintf(os.Stderr, "warning: message %s not delivered to gateway: %v\n", msg.ID, err)
	})

	// Hydrate from the persisted snapshot before any command runs, so the
	// shutdown persist always writes back at least the last-known state.
	// A fresh or unreadable cache is not fatal.
	if err := store.Restore(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	return &app{
		store:          store,
		cache:          cache,
		statusRenderer: statusadapter.Render,
		pollInterval:   cfg.GetDuration(pollIntervalKey),
		now:            time.Now,
	}, nil
}

func loadConfig(cfg *viper.Viper) (*viper.Viper, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetConfigName(configFileName)
	cfg.SetConfigType(configFileType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDirName))
	cfg.SetDefault(gatewayURLKey, defaultGatewayURL)
	cfg.SetDefault(gatewayTimeoutKey, defaultGatewayTimeout)
	cfg.SetDefault(pollIntervalKey, application.DefaultPollInterval)
	cfg.SetDefault(cachePathKey, filepath.Join(homeDir, configDirName, "cache.db"))

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return cfg, nil
}

// shutdown persists the cache and drains background work. Run as the root
// command's PersistentPostRunE.
func (a *app) shutdown(ctx context.Context) error {
	a.store.Close()

	var errs []error
	if err := a.store.Persist(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close cache store: %w", err))
	}
	return errors.Join(errs...)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
