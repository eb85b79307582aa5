package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/fitcoach/internal/auth"
	"github.com/2beens/fitcoach/internal/coaching"
	"github.com/2beens/fitcoach/internal/coaching/ai"
	"github.com/2beens/fitcoach/internal/coaching/store"
	"github.com/2beens/fitcoach/internal/config"
	"github.com/2beens/fitcoach/internal/db"
	"github.com/2beens/fitcoach/internal/middleware"
	"github.com/2beens/fitcoach/internal/telemetry/metrics"
	"github.com/2beens/fitcoach/internal/telemetry/tracing"
)

const (
	sessionsCleanupInterval = 8 * time.Hour
	// progress photos travel inline as data urls
	maxRequestBodyBytes = 16 << 20
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config *config.Config
	dbPool *pgxpool.Pool // nil with the sqlite store
	store  store.Store

	redisClient     *redis.Client
	rateLimiter     middleware.RequestRateLimiter
	authService     *auth.Service
	coachingService *coaching.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	JWTSecret               string
	CoachPasswordHash       string
	RedisPassword           string
	PostgresPassword        string
	OpenAIAPIKey            string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	var (
		dbPool          *pgxpool.Pool
		coachStore      store.Store
		extraCollectors []prometheus.Collector
	)
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: params.HoneycombTracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}

		dbPool = pool
		coachStore = store.NewPostgres(pool)
		extraCollectors = append(extraCollectors, pgxpoolprometheus.NewCollector(
			pool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	case "sqlite":
		sqliteStore, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		coachStore = sqliteStore
		log.Debugf("using sqlite store: %s", cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}

	promRegistry := metrics.SetupPrometheus(extraCollectors...)
	metricsManager := metrics.NewManager("fitcoach", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fitcoach-backend", rdb)
	if err != nil {
		return nil, err
	}

	authService := auth.NewAuthService(
		&auth.Coach{
			Email:        cfg.CoachEmail,
			PasswordHash: params.CoachPasswordHash,
		},
		coachStore,
		params.JWTSecret,
		time.Duration(cfg.SessionTTLHours)*time.Hour,
		rdb,
	)

	var completer ai.Completer
	if cfg.AIEnabled && params.OpenAIAPIKey != "" {
		completer = ai.NewOpenAICompleter(params.OpenAIAPIKey, cfg.AIBaseURL, cfg.AIModel, cfg.AIMaxRetries)
		log.Debugf("ai coach enabled, model: %s", cfg.AIModel)
	} else {
		log.Warnln("ai coach disabled, fallback answers will be used")
	}
	aiCoach := ai.NewCoach(
		completer,
		cfg.AICacheSizeMB,
		time.Duration(cfg.AITimeoutSecs)*time.Second,
		metricsManager,
	)

	return &Server{
		config: cfg,
		dbPool: dbPool,
		store:  coachStore,

		redisClient:     rdb,
		rateLimiter:     redis_rate.NewLimiter(rdb),
		authService:     authService,
		coachingService: coaching.NewService(coachStore, aiCoach, authService, metricsManager),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("fitcoach-router"))

	authHandler := auth.NewHandler(s.authService, s.coachingService)
	r.HandleFunc("/auth/me", authHandler.HandleMe).Methods("GET", "OPTIONS").Name("me")

	loginSubrouter := r.PathPrefix("/auth").Subrouter()
	loginSubrouter.
		HandleFunc("/login", authHandler.HandleLogin).
		Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.
		HandleFunc("/logout", authHandler.HandleLogout).
		Methods("GET", "OPTIONS").Name("logout")

	// rate limit the /login and /logout endpoints to prevent abuse
	loginSubrouter.Use(middleware.RateLimit(s.rateLimiter, "login", s.config.LoginRateLimitAllowedPerMin, s.metricsManager))

	coachingHandler := coaching.NewHandler(s.coachingService)
	r.HandleFunc("/clients", coachingHandler.HandleListClients).Methods("GET", "OPTIONS").Name("list-clients")
	r.HandleFunc("/clients", coachingHandler.HandleCreateClient).Methods("POST", "OPTIONS").Name("new-client")
	r.HandleFunc("/clients/{id}", coachingHandler.HandleGetClient).Methods("GET", "OPTIONS").Name("get-client")
	r.HandleFunc("/clients/{id}", coachingHandler.HandleDeleteClient).Methods("DELETE", "OPTIONS").Name("delete-client")
	r.HandleFunc("/clients/{id}/targets", coachingHandler.HandleUpdateTargets).Methods("PUT", "OPTIONS").Name("update-targets")
	r.HandleFunc("/clients/{id}/status", coachingHandler.HandleUpdateStatus).Methods("PUT", "OPTIONS").Name("update-status")
	r.HandleFunc("/clients/{id}/days/{date}", coachingHandler.HandleGetDay).Methods("GET", "OPTIONS").Name("get-day")
	r.HandleFunc("/clients/{id}/days/{date}", coachingHandler.HandlePatchDay).Methods("PATCH", "OPTIONS").Name("patch-day")
	r.HandleFunc("/clients/{id}/days/{date}/plan", coachingHandler.HandlePlan).Methods("POST", "OPTIONS").Name("plan-day")
	r.HandleFunc("/clients/{id}/days/{date}/insight", coachingHandler.HandleInsight).Methods("GET", "OPTIONS").Name("day-insight")
	r.HandleFunc("/clients/{id}/progression", coachingHandler.HandleProgression).Methods("GET", "OPTIONS").Name("progression")
	r.HandleFunc("/clients/{id}/messages", coachingHandler.HandleListMessages).Methods("GET", "OPTIONS").Name("list-messages")
	r.HandleFunc("/clients/{id}/messages", coachingHandler.HandleSendMessage).Methods("POST", "OPTIONS").Name("send-message")
	r.HandleFunc("/exercises/tips", coachingHandler.HandleTips).Methods("GET", "OPTIONS").Name("exercise-tips")
	r.HandleFunc("/exercises/correction", coachingHandler.HandleCorrection).Methods("GET", "OPTIONS").Name("exercise-correction")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.authService)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.LimitAndDrainRequest(maxRequestBodyBytes))

	return r, nil
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{Registry: s.promRegistry},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	go s.cleanSessionsLoop(ctx, sessionsCleanupInterval)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// cleanSessionsLoop drops expired session ids from redis until ctx is done.
func (s *Server) cleanSessionsLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.authService.ScanAndClean(ctx)
		}
	}
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Errorf("failed to close store: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
