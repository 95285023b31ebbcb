// Package app wires configuration into a running server.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/AminKei/real-chees/internal/config"
	"github.com/AminKei/real-chees/internal/httpapi"
	"github.com/AminKei/real-chees/internal/msgcat"
	"github.com/AminKei/real-chees/internal/notify"
	"github.com/AminKei/real-chees/internal/session"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

type Deps struct {
	Store    *session.Store
	Results  session.ResultRepository
	Manager  *session.Manager
	Catalog  *msgcat.Catalog
	Server   *httpapi.Server
	Notifier *notify.Client

	pg *session.PostgresRepository
}

// New connects the stores and builds the server. On error everything opened
// so far is closed again.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (_ *Deps, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Deps{}
	defer func() {
		if err != nil {
			_ = d.Close()
		}
	}()

	// Sessions (Redis required)
	d.Store, err = session.NewStore(ctx, cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}

	// Results: Postgres when configured, otherwise kept in memory
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		d.pg, err = session.NewPostgresRepository(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err = d.pg.Migrate(ctx); err != nil {
			return nil, err
		}
		d.Results = d.pg
	} else {
		logger.Warn("results_in_memory", zap.String("reason", "DATABASE_URL not set"))
		d.Results = session.NewMemoryRepository()
	}

	opts := []session.Option{
		session.WithResults(d.Results),
		session.WithComputerDelay(cfg.ComputerDelay),
		session.WithLogger(logger.Named("session")),
	}
	if strings.TrimSpace(cfg.NotifyURL) != "" {
		d.Notifier = notify.NewClient(cfg.NotifyURL, notify.WithHeaderProvider(notifyHeaders(cfg)))
		opts = append(opts, session.WithNotifier(d.Notifier))
	}
	d.Manager = session.NewManager(d.Store, opts...)

	d.Catalog, err = msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	d.Server = httpapi.NewServer(d.Manager,
		httpapi.WithCatalog(d.Catalog),
		httpapi.WithLogger(logger.Named("http")),
		httpapi.WithDefaults(cfg.ComputerColor, cfg.EndPolicy),
		httpapi.WithHealthCheck(d.Store.Ping),
	)
	return d, nil
}

func notifyHeaders(cfg *config.AppConfig) notify.HeaderProvider {
	token := strings.TrimSpace(cfg.NotifyToken)
	return func() map[string]string {
		if token == "" {
			return nil
		}
		return map[string]string{"Authorization": "Bearer " + token}
	}
}

// Close releases everything New opened, manager first so pending replies
// and notifications drain before the stores go away.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var result *multierror.Error
	if d.Manager != nil {
		if err := d.Manager.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close manager: %w", err))
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close redis: %w", err))
		}
	}
	if d.pg != nil {
		if err := d.pg.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close postgres: %w", err))
		}
	}
	return result.ErrorOrNil()
}
