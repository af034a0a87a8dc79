package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cashbridge/tokenvault/internal/adapters/http/in"
	"github.com/cashbridge/tokenvault/internal/adapters/mongodb"
	postgresattempt "github.com/cashbridge/tokenvault/internal/adapters/postgres/attempt"
	postgresledger "github.com/cashbridge/tokenvault/internal/adapters/postgres/ledger"
	postgrestoken "github.com/cashbridge/tokenvault/internal/adapters/postgres/token"
	"github.com/cashbridge/tokenvault/internal/adapters/postgres/txn"
	"github.com/cashbridge/tokenvault/internal/adapters/rabbitmq"
	adapterredis "github.com/cashbridge/tokenvault/internal/adapters/redis"
	"github.com/cashbridge/tokenvault/internal/app/command"
	"github.com/cashbridge/tokenvault/internal/app/query"
	"github.com/cashbridge/tokenvault/pkg/mlog"
	"github.com/cashbridge/tokenvault/pkg/mmongo"
	"github.com/cashbridge/tokenvault/pkg/mpostgres"
	"github.com/cashbridge/tokenvault/pkg/mrabbitmq"
	"github.com/cashbridge/tokenvault/pkg/mredis"
)

// drainTimeout bounds how long the server waits for in-flight requests to
// finish on shutdown, per spec.md §5.
const drainTimeout = 10 * time.Second

// Server is the HTTP App: it owns every backing connection tokenvault
// depends on and the Fiber app built on top of them.
type Server struct {
	Config *Config
	Logger mlog.Logger

	postgres *mpostgres.Connection
	redis    *mredis.Connection
	mongo    *mmongo.Connection
	rabbit   *mrabbitmq.Connection
}

// NewServer returns a Server ready to Run.
func NewServer(cfg *Config, logger mlog.Logger) *Server {
	return &Server{Config: cfg, Logger: logger}
}

var _ App = (*Server)(nil)

// Run connects every backing store, wires the use cases and HTTP router,
// and serves until SIGINT/SIGTERM, draining in-flight requests and closing
// every connection before returning.
func (s *Server) Run(_ *Launcher) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.connect(ctx); err != nil {
		return fmt.Errorf("connect backing stores: %w", err)
	}
	defer s.closeAll()

	router := s.buildRouter()

	serveErr := make(chan error, 1)

	go func() {
		addr := s.Config.ServerHost + ":" + s.Config.ServerPort
		s.Logger.Infof("listening on %s", addr)

		if err := router.Listen(addr); err != nil {
			serveErr <- err
			return
		}

		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		s.Logger.Info("shutdown signal received, draining in-flight requests")

		if err := router.ShutdownWithTimeout(drainTimeout); err != nil {
			s.Logger.Errorf("shutdown did not drain cleanly: %v", err)
			return err
		}

		s.Logger.Info("shutdown complete")

		return nil

	case err := <-serveErr:
		return err
	}
}

func (s *Server) connect(ctx context.Context) error {
	s.postgres = &mpostgres.Connection{
		ConnectionStringPrimary: s.Config.DatabaseURL,
		ConnectionStringReplica: s.Config.DatabaseReplicaURL,
		DatabaseName:            "tokenvault",
		Logger:                  s.Logger,
	}

	if s.Config.AutoMigrate {
		s.postgres.MigrationsPath = s.Config.MigrationsPath
	}

	if err := s.postgres.Connect(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	s.redis = &mredis.Connection{
		Addr:     s.Config.RedisAddr(),
		Password: s.Config.RedisPassword,
		Logger:   s.Logger,
	}
	if err := s.redis.Connect(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	s.mongo = &mmongo.Connection{
		URI:      s.Config.MongoURI,
		Database: s.Config.MongoDatabase,
		Logger:   s.Logger,
	}
	if err := s.mongo.Connect(ctx); err != nil {
		s.Logger.Errorf("mongo: %v (attempt metadata will be unavailable)", err)
	}

	s.rabbit = &mrabbitmq.Connection{
		URI:      s.Config.RabbitMQURI,
		Exchange: s.Config.RabbitMQExchange,
		Logger:   s.Logger,
	}
	if err := s.rabbit.Connect(); err != nil {
		s.Logger.Errorf("rabbitmq: %v (withdrawal.completed will not be published)", err)
	}

	return nil
}

func (s *Server) closeAll() {
	if s.rabbit != nil {
		if err := s.rabbit.Close(); err != nil {
			s.Logger.Errorf("closing rabbitmq: %v", err)
		}
	}

	if s.mongo != nil {
		if err := s.mongo.Close(context.Background()); err != nil {
			s.Logger.Errorf("closing mongo: %v", err)
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.Logger.Errorf("closing redis: %v", err)
		}
	}

	if s.postgres != nil {
		if err := s.postgres.Close(); err != nil {
			s.Logger.Errorf("closing postgres: %v", err)
		}
	}
}

func (s *Server) buildRouter() *fiber.App {
	tokens := postgrestoken.NewRepository(s.postgres)
	ledgers := postgresledger.NewRepository(s.postgres)
	attempts := postgresattempt.NewRepository(s.postgres)
	unitOfWork := txn.New(s.postgres)
	metadata := mongodb.NewRepository(s.mongo)
	events := rabbitmq.New(s.rabbit, s.Logger)
	limiter := adapterredis.New(s.redis, s.Logger, adapterredis.FailOpen)

	mint := &command.MintUseCase{
		Tokens: tokens,
		Pepper: s.Config.TokenPepper,
		TTL:    s.Config.TTL(),
		Logger: s.Logger,
	}

	redeem := &command.RedeemUseCase{
		Tokens:     tokens,
		Ledger:     ledgers,
		Attempts:   attempts,
		Metadata:   metadata,
		Events:     events,
		UnitOfWork: unitOfWork,
		Pepper:     s.Config.TokenPepper,
		Logger:     s.Logger,
	}

	orchestrator := &command.RedeemOrchestrator{
		Redeem: redeem,
		Context: &query.RiskContextGatherer{
			Tokens:   tokens,
			Ledger:   ledgers,
			Attempts: attempts,
		},
		Logger: s.Logger,
	}

	tokenHandler := &in.TokenHandler{Mint: mint, Redeem: orchestrator}
	healthHandler := in.NewHealthHandler(s.postgres, s.redis)

	app := in.NewRouter(in.RouterConfig{
		Limiter:          limiter,
		MintLimit:        int(s.Config.RateLimitMaxRequests),
		MintWindow:       s.Config.RateLimitWindow(),
		RedeemLimit:      int(s.Config.RateLimitMaxRequests),
		RedeemWindow:     s.Config.RateLimitWindow(),
		CORSAllowOrigins: s.Config.CORSAllowOrigins,
	}, tokenHandler, healthHandler)

	return app
}
