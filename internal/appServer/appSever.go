// wiring storage, backends, kafka, redis and the http server
package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ds124wfegd/negative-web/config"
	"github.com/ds124wfegd/negative-web/internal/database"
	"github.com/ds124wfegd/negative-web/internal/pkg/backend"
	"github.com/ds124wfegd/negative-web/internal/pkg/kafka"
	"github.com/ds124wfegd/negative-web/internal/pkg/processor"
	"github.com/ds124wfegd/negative-web/internal/pkg/storage"
	"github.com/ds124wfegd/negative-web/internal/service"
	"github.com/ds124wfegd/negative-web/internal/store"
	"github.com/ds124wfegd/negative-web/internal/transport"
	"github.com/ds124wfegd/negative-web/internal/worker"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// NewServices builds the service layer from configuration. The returned
// producer must be closed by the caller.
func NewServices(cfg *config.Config, snapshots database.SnapshotRepository) (*service.Services, kafka.Producer) {
	fileStorage := storage.NewFileStorage(cfg.Artifacts.StoragePath)
	artifactRepo := database.NewArtifactRepository(fileStorage)
	imgProcessor := processor.NewImageProcessor(cfg.Artifacts.PreviewSize)

	var producer kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		producer = kafka.NewLogProducer()
	}

	client := backend.NewClient(cfg.Backend, nil)
	artifacts := service.NewArtifactService(artifactRepo, producer, imgProcessor)

	return &service.Services{
		Echo:      service.NewEchoService(client),
		Negative:  service.NewNegativeService(client, artifacts),
		Artifacts: artifacts,
		Sessions:  service.NewSessionService(store.NewSessions(), snapshots, artifacts, cfg.Session.IdleTTL),
		Health:    service.NewHealthService(client),
	}, producer
}

func newSnapshotRepository(cfg config.RedisConfig) (database.SnapshotRepository, func()) {
	if !cfg.Enabled() {
		return database.NopSnapshotRepository{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.Warnf("Redis unavailable at %s, session snapshots disabled: %v", cfg.Addr(), err)
		client.Close()
		return database.NopSnapshotRepository{}, func() {}
	}

	logrus.Infof("Session snapshots mirrored to redis at %s", cfg.Addr())
	return database.NewRedisSnapshotRepository(client, cfg.TTL), func() { client.Close() }
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(new(logrus.JSONFormatter))

	if strings.EqualFold(cfg.Server.Mode, "release") {
		gin.SetMode(gin.ReleaseMode)
	}

	snapshots, closeSnapshots := newSnapshotRepository(cfg.Redis)
	defer closeSnapshots()

	services, producer := NewServices(cfg, snapshots)
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanupWorker := worker.NewSessionCleanupWorker(services.Sessions, cfg.Session.CleanupInterval)
	go cleanupWorker.Start(ctx)

	handler := transport.NewHandler(services, cfg.Backend.MaxUploadSize)

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(handler, cfg.Session.CookieName, cfg.Server.Timeout)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Printf("App Started on port %s", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	services.Sessions.TeardownAll(shutdownCtx)
}
