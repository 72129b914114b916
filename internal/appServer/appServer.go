package appServer

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/facility-booking/config"
	"github.com/ds124wfegd/facility-booking/internal/cache"
	repository "github.com/ds124wfegd/facility-booking/internal/database/postgres"
	"github.com/ds124wfegd/facility-booking/internal/monitor"
	"github.com/ds124wfegd/facility-booking/internal/notifier"
	"github.com/ds124wfegd/facility-booking/internal/obs"
	"github.com/ds124wfegd/facility-booking/internal/service"
	"github.com/ds124wfegd/facility-booking/internal/transport"
	"github.com/ds124wfegd/facility-booking/internal/worker"

	"github.com/ds124wfegd/facility-booking/pkg/postgres"
	"github.com/ds124wfegd/facility-booking/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.AdminPort,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	facilityRepo := repository.NewFacilityRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	accessCodeRepo := repository.NewAccessCodeRepository(db)

	// Initialize services
	bookingService := service.NewBookingService(facilityRepo, bookingRepo, accessCodeRepo)

	// Reply cache backend: Redis with per-entry TTL, or the in-memory
	// cache swept by the background worker
	var replyCache cache.ReplyCache
	var memoryCache *cache.MemoryReplyCache
	if cfg.Dedup.Backend == "redis" {
		redisClient := redis.NewRedisClient(&cfg.Redis)
		defer redisClient.Close()

		replyCache, err = cache.NewRedisReplyCache(redisClient, cfg.Dedup.TTL)
		if err != nil {
			logrus.Fatalf("Failed to initialize Redis reply cache: %v", err)
		}
		logrus.Info("Redis reply cache initialized")
	} else {
		memoryCache = cache.NewMemoryReplyCache(cfg.Dedup.TTL)
		replyCache = memoryCache
		logrus.Info("In-memory reply cache initialized")
	}

	registry := monitor.NewRegistry(cfg.Monitor.MaxDuration)
	metrics := obs.NewMetrics()

	// UDP socket for the booking protocol
	udpAddr := &net.UDPAddr{
		IP:   net.ParseIP(cfg.Server.Host),
		Port: cfg.Server.Port,
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		logrus.Fatalf("Failed to listen on UDP port %d: %v", cfg.Server.Port, err)
	}
	defer conn.Close()
	logrus.Infof("Listening for booking requests on UDP %s", conn.LocalAddr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Dispatcher loop
	dispatcher := transport.NewDispatcher(conn, bookingService, registry, replyCache, metrics, cfg.Server.PollInterval)
	go dispatcher.Run(ctx)

	// Change stream and fan-out loop
	changeListener, err := repository.NewChangeListener(
		postgres.DSN(&cfg.Database),
		cfg.Database.ListenChannel,
		cfg.Database.ListenMinReconnect,
		cfg.Database.ListenMaxReconnect,
	)
	if err != nil {
		logrus.Fatalf("Failed to initialize change listener: %v", err)
	}
	go changeListener.Run(ctx)

	fanout := notifier.New(changeListener.Events(), registry, conn, metrics)
	go fanout.Run(ctx)

	// Background sweep of expired subscriptions and cache entries
	var sweeper worker.Sweeper
	if memoryCache != nil {
		sweeper = memoryCache
	}
	sweepWorker := worker.NewSweepWorker(registry, sweeper, metrics, cfg.Worker.SweepInterval)
	go sweepWorker.Start(ctx)

	// Admin HTTP server
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	var cacheLen func() int
	if memoryCache != nil {
		cacheLen = memoryCache.Len
	}
	adminHandler := transport.NewAdminHandler(registry, cacheLen, cfg.Server.AppVersion)

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitAdminRoutes(adminHandler)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running admin http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	// обе петли замечают отмену в пределах одного интервала опроса
	time.Sleep(cfg.Server.PollInterval)
	fmt.Println("Server stopped")
}
