package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"student-compass/internal/assessment"
	"student-compass/internal/config"
	"student-compass/internal/db"
	apihttp "student-compass/internal/http"
	"student-compass/internal/repository"
	"student-compass/internal/service"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type repositories struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	bookings repository.BookingRepository
	close    func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err), zap.String("driver", cfg.DBDriver))
	}
	defer repos.close()

	var (
		loginLimiter service.LoginRateLimiter
		tokenStore   service.RefreshTokenStore
		sessionStore service.AssessmentSessionStore
		redisClient  *redis.Client
	)
	sessionTTL := time.Duration(cfg.AssessmentSessionTTL) * time.Minute
	loginWindow := time.Duration(cfg.LoginWindowMinutes) * time.Minute
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			loginLimiter = service.NewRedisLoginRateLimiter(redisClient, loginWindow, cfg.LoginMaxAttempts)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			sessionStore = service.NewRedisSessionStore(redisClient, sessionTTL)
		}
		cancel()
		defer redisClient.Close()
	}
	if loginLimiter == nil {
		loginLimiter = service.NewLoginRateLimiter(loginWindow, cfg.LoginMaxAttempts)
	}
	if sessionStore == nil {
		sessionStore = service.NewMemorySessionStore(sessionTTL)
	}

	var publisher service.ResultPublisher = service.NoopResultPublisher{}
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("student-compass"))
		if err != nil {
			logger.Warn("nats connect failed", zap.Error(err))
		} else {
			defer func() {
				if err := nc.Drain(); err != nil {
					logger.Warn("nats drain", zap.Error(err))
				}
			}()
			publisher = service.NewNATSResultPublisher(nc, cfg.NATSSubject)
		}
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured, user routes are unauthenticated")
	}

	policy := assessment.ValueReject
	if cfg.AssessmentValuePolicy == "clamp" {
		policy = assessment.ValueClamp
	}

	userSvc := service.NewUserService(logger, repos.users, repos.profiles, loginLimiter)
	assessmentSvc := service.NewAssessmentService(logger, assessment.DefaultBank(), policy, sessionStore, repos.users, repos.profiles, publisher)
	bookingSvc := service.NewBookingService(logger, repos.users, repos.bookings)

	router := apihttp.NewRouter(logger, jwtSvc,
		apihttp.NewUserHandler(logger, userSvc, jwtSvc),
		apihttp.NewAssessmentHandler(logger, assessmentSvc),
		apihttp.NewBookingHandler(logger, bookingSvc),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("db_driver", cfg.DBDriver))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	if cfg.DBDriver == config.DriverSQLite {
		sqlDB, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			users:    repository.NewSqliteUserRepository(sqlDB),
			profiles: repository.NewSqliteProfileRepository(sqlDB),
			bookings: repository.NewSqliteBookingRepository(sqlDB),
			close:    func() { _ = sqlDB.Close() },
		}, nil
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}
	if err := db.Ping(ctx, pool); err != nil {
		pool.Close()
		return repositories{}, err
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return repositories{}, err
	}
	return repositories{
		users:    repository.NewPgUserRepository(pool),
		profiles: repository.NewPgProfileRepository(pool),
		bookings: repository.NewPgBookingRepository(pool),
		close:    pool.Close,
	}, nil
}
