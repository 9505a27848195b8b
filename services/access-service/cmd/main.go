// services/access-service/cmd/main.go

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/api"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/app/commands"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/config"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/infra/memory"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/infra/postgres"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/infra/redis"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/crypto"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/ratelimit"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/repository"
	pkgkafka "github.com/Tanmoy095/InvestHub/shared/kafka"
	"github.com/Tanmoy095/InvestHub/shared/logging"
	"github.com/joho/godotenv"
)

const serviceName = "access-service"

type stores struct {
	requests repository.AccessRequestStore
	accounts repository.AccountStore
	sessions repository.SessionStore
	audit    repository.AuditStore
	tx       repository.TransactionManager
	close    func() error
}

func main() {
	// .env is optional; real deployments inject the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(serviceName, cfg.Common.LOG_LEVEL)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("service shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	limiter, closeLimiter, err := newLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	opts := commands.Options{Logger: logger}
	if cfg.Common.KafkaEnabled() {
		logger.Info("publishing access request events",
			slog.Any("brokers", cfg.Common.KAFKA_BROKERS), slog.String("topic", cfg.Common.KAFKA_TOPIC))
		producer := pkgkafka.NewKafkaProducer(cfg.Common.KAFKA_BROKERS, cfg.Common.KAFKA_TOPIC)
		defer producer.Close()
		opts.Publisher = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set; access request events are not published")
	}

	hasher := crypto.NewArgon2Hasher(crypto.DefaultParams)
	signer := crypto.NewJWTInviteSigner(cfg.InviteSecret, cfg.InviteIssuer, cfg.InviteTTL)

	if cfg.AdminEmail != "" {
		_, created, err := commands.NewEnsureAdminHandler(st.accounts, st.audit, st.tx, hasher, opts).
			Handle(ctx, commands.EnsureAdminParams{
				Email:        cfg.AdminEmail,
				FullName:     cfg.AdminFullName,
				Password:     cfg.AdminPassword,
				PasswordHash: cfg.AdminPasswordHash,
			})
		if err != nil {
			return err
		}
		logger.Info("administrator ready", slog.String("email", cfg.AdminEmail), slog.Bool("created", created))
	} else {
		logger.Warn("ADMIN_EMAIL not set; nobody can review access requests until an admin exists")
	}

	handler := api.NewHandler(api.Commands{
		Submit:       commands.NewSubmitAccessRequestHandler(st.requests, st.accounts, st.audit, st.tx, opts),
		List:         commands.NewListAccessRequestsHandler(st.requests),
		Approve:      commands.NewApproveAccessRequestHandler(st.requests, st.accounts, st.audit, st.tx, signer, opts),
		Reject:       commands.NewRejectAccessRequestHandler(st.requests, st.audit, st.tx, opts),
		Clear:        commands.NewClearAccessRequestHandler(st.requests, st.audit, st.tx, opts),
		Reissue:      commands.NewReissueInviteHandler(st.requests, st.accounts, st.audit, st.tx, signer, opts),
		Accept:       commands.NewAcceptInvitationHandler(st.accounts, st.audit, st.tx, hasher, signer, opts),
		Login:        commands.NewLoginUserHandler(st.accounts, st.requests, st.sessions, st.audit, st.tx, hasher, limiter, cfg.SessionTTL, opts),
		Authenticate: commands.NewAuthenticateSessionHandler(st.sessions, st.accounts, opts),
		Logout:       commands.NewLogoutUserHandler(st.sessions, st.audit, st.tx, opts),
	}, logger, api.WithInviteTokens(cfg.ExposeInviteTokens))
	if cfg.ExposeInviteTokens {
		logger.Warn("EXPOSE_INVITE_TOKENS is set; invite tokens are returned to admins")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		db := memory.NewDB()
		return &stores{
			requests: memory.NewAccessRequestStore(db),
			accounts: memory.NewAccountStore(db),
			sessions: memory.NewSessionStore(db),
			audit:    memory.NewAuditStore(db),
			tx:       memory.NewTxManager(db),
			close:    func() error { return nil },
		}, nil
	}

	logger.Info("connecting to postgres", slog.String("host", cfg.Common.DB_HOST), slog.String("db", cfg.Common.DB_NAME))
	db, err := postgres.Open(ctx, cfg.Common.GetDBURL())
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &stores{
		requests: postgres.NewAccessRequestStore(db),
		accounts: postgres.NewAccountStore(db),
		sessions: postgres.NewSessionStore(db),
		audit:    postgres.NewAuditStore(db),
		tx:       postgres.NewTxManager(db),
		close:    db.Close,
	}, nil
}

// newLimiter prefers Redis so limits hold across replicas.
func newLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ratelimit.Limiter, func() error, error) {
	noClose := func() error { return nil }
	if cfg.LoginAttemptLimit <= 0 {
		logger.Warn("login rate limiting disabled")
		return ratelimit.Noop{}, noClose, nil
	}
	if cfg.Common.REDIS_URL == "" {
		return memory.NewLimiter(cfg.LoginAttemptLimit, cfg.LoginAttemptWindow), noClose, nil
	}
	client, err := redis.NewClient(ctx, cfg.Common.REDIS_URL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("login rate limiting via redis")
	return redis.NewLimiter(client, cfg.LoginAttemptLimit, cfg.LoginAttemptWindow), client.Close, nil
}
