package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bibliodesk/library-service/config"
	"github.com/bibliodesk/library-service/internal/handler"
	"github.com/bibliodesk/library-service/internal/repository"
	"github.com/bibliodesk/library-service/internal/server"
	"github.com/bibliodesk/library-service/internal/service"
	"github.com/bibliodesk/library-service/migrations"
	"github.com/bibliodesk/library-service/pkg/kafka"
	"github.com/bibliodesk/library-service/pkg/logger"
	"github.com/bibliodesk/library-service/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "library")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	// Loan events are optional: no brokers configured, no producer.
	var publisher kafka.Publisher
	if len(cfg.Kafka.Addrs) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		defer producer.Close()
		publisher = kafka.NewPublisher(producer, cfg.Kafka.Topic)
	}

	h := handler.New(handler.Services{
		User:         service.NewUserService(repo, log),
		Book:         service.NewBookService(repo, log),
		Category:     service.NewCategoryService(repo, log),
		Loan:         service.NewLoanService(repo, publisher, log),
		Notification: service.NewNotificationService(repo, log),
		Review:       service.NewReviewService(repo, log),
	}, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
