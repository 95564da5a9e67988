package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/adfharrison1/bookreport/pkg/config"
	"github.com/adfharrison1/bookreport/pkg/domain"
	"github.com/adfharrison1/bookreport/pkg/logging"
	"github.com/adfharrison1/bookreport/pkg/mongostore"
	"github.com/adfharrison1/bookreport/pkg/storage"
)

// closeTimeout bounds disconnecting from the store on exit
const closeTimeout = 10 * time.Second

// app carries what every command needs once the configuration is loaded
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  domain.Store
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// setup loads configuration, builds the logger and opens the configured store
func setup(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Sugar().Errorf("Failed to open %s store: %v", cfg.Store.Driver, err)
		_ = logger.Sync()
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, store: store}, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		store, err := mongostore.Connect(ctx, cfg.Store.URI, cfg.Store.Database,
			mongostore.WithConnectTimeout(cfg.Store.ConnectTimeout),
			mongostore.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverEmbedded:
		opts := []storage.StorageOption{
			storage.WithDataFile(cfg.Embedded.DataFile),
			storage.WithMaxDocuments(cfg.Embedded.MaxDocuments),
			storage.WithLogger(logger),
		}
		if cfg.Embedded.SaveInterval > 0 {
			opts = append(opts, storage.WithBackgroundSave(cfg.Embedded.SaveInterval))
		} else {
			logger.Sugar().Warnf("Background save disabled - data only saved on exit")
		}
		engine, err := storage.Open(opts...)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Store.Driver)
}

// close releases the store on every exit path and flushes the logger
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	sugar := a.logger.Sugar()
	if err := a.store.Close(ctx); err != nil {
		sugar.Errorf("Failed to close store: %v", err)
	} else {
		sugar.Infof("Store connection closed")
	}
	_ = a.logger.Sync()
}

func (a *app) collection() domain.Collection {
	return a.store.Collection(a.cfg.Store.Collection)
}

// splitList parses a comma separated flag value, ignoring blanks
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// isInterrupt reports whether err came from the signal context
func isInterrupt(err error) bool {
	return errors.Is(err, context.Canceled)
}
