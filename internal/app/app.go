package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rideapp/ride-booking-system/config"
	"github.com/rideapp/ride-booking-system/internal/adapter/http/server"
	"github.com/rideapp/ride-booking-system/internal/adapter/memstore"
	postgresrepo "github.com/rideapp/ride-booking-system/internal/adapter/postgres"
	rabbitadapter "github.com/rideapp/ride-booking-system/internal/adapter/rabbit"
	"github.com/rideapp/ride-booking-system/internal/adapter/ws"
	"github.com/rideapp/ride-booking-system/internal/service/auth"
	"github.com/rideapp/ride-booking-system/internal/service/booking"
	"github.com/rideapp/ride-booking-system/internal/service/cleanup"
	"github.com/rideapp/ride-booking-system/pkg/clock"
	"github.com/rideapp/ride-booking-system/pkg/keylock"
	"github.com/rideapp/ride-booking-system/pkg/logger"
	wrap "github.com/rideapp/ride-booking-system/pkg/logger/wrapper"
	"github.com/rideapp/ride-booking-system/pkg/postgres"
	"github.com/rideapp/ride-booking-system/pkg/rabbit"
	"github.com/rideapp/ride-booking-system/pkg/trm"
	"github.com/rideapp/ride-booking-system/pkg/wshub"
)

// stores groups the backing store implementations picked by configuration.
type stores struct {
	rides    booking.RideStore
	bookings booking.BookingStore
	users    booking.UserDirectory
	txm      trm.TxManager
}

type App struct {
	cfg config.Config
	log logger.Logger

	api     *server.API
	sweeper *cleanup.Sweeper
	hub     *wshub.Hub

	db       *postgres.PostgreDB
	rabbitMQ *rabbit.RabbitMQ
}

func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	a := &App{
		cfg: cfg,
		log: log,
	}

	locks := keylock.New()
	clk := clock.Real()

	st, err := a.initStores(ctx)
	if err != nil {
		return nil, err
	}

	a.hub = wshub.New(log)

	publishers := booking.MultiPublisher{ws.NewFeed(a.hub)}
	if cfg.RabbitMQ.Enabled {
		client, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		a.rabbitMQ = client

		pub, err := rabbitadapter.NewPublisher(client)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, pub)
	}

	opts := []booking.Option{}
	if st.txm != nil {
		opts = append(opts, booking.WithTxManager(st.txm))
	}
	lifecycle := booking.NewService(st.rides, st.bookings, st.users, publishers, locks, clk, log, opts...)

	a.sweeper = cleanup.NewSweeper(
		st.rides, st.bookings, publishers, locks, clk,
		cleanup.Policy{
			Grace:             cfg.Sweeper.Grace,
			AcceptedRetention: cfg.Sweeper.AcceptedRetention,
		},
		cfg.Sweeper.Interval,
		log,
	)

	guard := auth.NewGuard(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL)
	authService := auth.NewService(guard, st.users, clk)

	api, err := server.New(cfg, lifecycle, lifecycle, a.sweeper, authService, authService, a.hub, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init http server: %w", err)
	}
	a.api = api

	return a, nil
}

func (a *App) initStores(ctx context.Context) (stores, error) {
	switch a.cfg.Storage.Backend {
	case "postgres":
		db, err := postgres.New(ctx, a.cfg.Database)
		if err != nil {
			return stores{}, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.db = db
		return stores{
			rides:    postgresrepo.NewRideRepo(db.Pool),
			bookings: postgresrepo.NewBookingRepo(db.Pool),
			users:    postgresrepo.NewUserRepo(db.Pool),
			txm:      trm.New(db.Pool),
		}, nil

	case "memory", "":
		users := memstore.NewUserStore()
		if a.cfg.Storage.SeedDemoUsers {
			seedDemoUsers(ctx, users, a.log)
		}
		return stores{
			rides:    memstore.NewRideStore(),
			bookings: memstore.NewBookingStore(),
			users:    users,
		}, nil

	default:
		return stores{}, fmt.Errorf("unknown storage backend: %q", a.cfg.Storage.Backend)
	}
}

// Run starts the HTTP server and the expiry sweeper, then blocks until a
// shutdown signal arrives or the server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	a.api.Run(ctx, errCh)

	sweepCtx, cancelSweeper := context.WithCancel(ctx)
	defer cancelSweeper()
	go a.sweeper.Start(sweepCtx)

	select {
	case <-ctx.Done():
		a.log.Info(ctx, "shutdown signal received")
	case err := <-errCh:
		a.log.Error(ctx, "server failed", err)
		return err
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx := wrap.WithAction(context.Background(), "app_shutdown")

	var firstErr error
	if err := a.api.Stop(ctx); err != nil {
		a.log.Error(ctx, "failed to stop http server", err)
		firstErr = err
	}

	a.hub.Close()

	if a.rabbitMQ != nil {
		if err := a.rabbitMQ.Close(); err != nil {
			a.log.Error(ctx, "failed to close rabbitmq connection", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if a.db != nil {
		a.db.Close()
	}

	a.log.Info(ctx, "application stopped")
	return firstErr
}
