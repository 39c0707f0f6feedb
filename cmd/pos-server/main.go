package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	_ "github.com/MikeMC777/pos-restaurante/docs"
	"github.com/MikeMC777/pos-restaurante/internal/authz"
	"github.com/MikeMC777/pos-restaurante/internal/config"
	"github.com/MikeMC777/pos-restaurante/internal/httpx"
	"github.com/MikeMC777/pos-restaurante/internal/logging"
	"github.com/MikeMC777/pos-restaurante/internal/memstore"
	"github.com/MikeMC777/pos-restaurante/internal/order"
	"github.com/MikeMC777/pos-restaurante/internal/outbox"
	"github.com/MikeMC777/pos-restaurante/internal/postgres"
	"github.com/MikeMC777/pos-restaurante/internal/product"
	"github.com/MikeMC777/pos-restaurante/internal/staff"
	"github.com/MikeMC777/pos-restaurante/internal/table"
	"github.com/MikeMC777/pos-restaurante/internal/tracing"
)

// @title        POS Restaurante API
// @version      1.0
// @description  Order lifecycle and totals for a restaurant point of sale.
// @BasePath     /api
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[config] %v", err)
	}
	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

// backend is the storage side selected by STORE_DRIVER.
type backend struct {
	orders   order.Repository
	products product.Repository
	tables   table.Repository
	staff    staff.Repository
	tx       order.Transactor
	outbox   interface {
		order.EventSink
		outbox.Store
	}
	close func()
}

func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (*backend, error) {
	if cfg.StoreDriver == "memory" {
		s := memstore.New()
		memstore.Seed(s)
		log.Warn("using in-memory store, data is lost on exit")
		return &backend{
			orders:   s.Orders(),
			products: s.Products(),
			tables:   s.Tables(),
			staff:    s.Staff(),
			tx:       s,
			outbox:   s.Outbox(),
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &backend{
		orders:   order.NewPGRepo(pool),
		products: product.NewPGRepo(pool),
		tables:   table.NewPGRepo(pool),
		staff:    staff.NewPGRepo(pool),
		tx:       postgres.NewTxManager(pool),
		outbox:   outbox.NewPGStore(pool),
		close:    pool.Close,
	}, nil
}

// openPublisher returns the broker publisher for EVENTS_BROKER and a func
// that releases its connections.
func openPublisher(cfg config.Config, log *slog.Logger) (outbox.Publisher, func(), error) {
	switch cfg.EventsBroker {
	case "kafka":
		w := outbox.NewKafkaWriter(cfg.KafkaBrokers)
		closeFn := func() {
			if err := w.Close(); err != nil {
				log.Warn("kafka writer close", "err", err)
			}
		}
		return outbox.NewKafkaPublisher(w, cfg.KafkaTopic), closeFn, nil
	case "rabbitmq":
		conn, ch, err := outbox.DialRabbit(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			_ = ch.Close()
			_ = conn.Close()
		}
		return outbox.NewRabbitPublisher(ch, cfg.RabbitMQExchange), closeFn, nil
	default:
		return outbox.NewLogPublisher(log), func() {}, nil
	}
}

func openIdempotency(ctx context.Context, cfg config.Config, log *slog.Logger) (httpx.IdempotencyStore, func()) {
	if cfg.RedisAddr == "" {
		return httpx.NewMemoryIdempotency(cfg.IdempotencyTTL), func() {}
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		// keys still go to redis; a failing store lets requests through
		log.Warn("redis ping failed", "addr", cfg.RedisAddr, "err", err)
	}
	return httpx.NewRedisIdempotency(rdb, cfg.IdempotencyTTL), func() { _ = rdb.Close() }
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	shutdownTracing, err := tracing.Init("pos-server", cfg.TracingEnabled, os.Stdout, log)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer be.close()

	staffSvc := staff.NewService(be.staff, log)
	if err := staffSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	orders := order.NewService(order.Deps{
		Repo:    be.orders,
		Catalog: be.products,
		Tables:  be.tables,
		Tx:      be.tx,
		Events:  be.outbox,
		Calc:    order.NewCalculator(cfg.Tax()),
		Numbers: order.NewNumberGenerator(cfg.Location()),
		Log:     log,
	})

	idem, closeIdem := openIdempotency(ctx, cfg, log)
	defer closeIdem()

	pub, closePub, err := openPublisher(cfg, log)
	if err != nil {
		return fmt.Errorf("events broker: %w", err)
	}
	defer closePub()
	relay := outbox.NewRelay(log, be.outbox, pub, "relay-"+uuid.NewString()[:8])

	router := newRouter(app{
		orders:        orders,
		staff:         staffSvc,
		tables:        be.tables,
		products:      be.products,
		policy:        authz.Default(),
		idem:          idem,
		sessionSecret: cfg.SessionSecret,
		log:           log,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	gs, health := newGRPCServer(log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("grpc listening", "addr", cfg.GRPCAddr)
		return gs.Serve(lis)
	})
	g.Go(func() error {
		return relay.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		health.Shutdown()
		gs.GracefulStop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown", "err", err)
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("tracing shutdown", "err", err)
		}
		return nil
	})

	return g.Wait()
}
