package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"

	"example.com/gamification/internal/award"
	"example.com/gamification/internal/config"
	"example.com/gamification/internal/consumer"
	"example.com/gamification/internal/leaderboard"
	"example.com/gamification/internal/outbox"
	"example.com/gamification/internal/persistence/postgres"
	"example.com/gamification/internal/profile"
	httptransport "example.com/gamification/internal/transport/http"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if cfg.SeedCatalog {
		if err := postgres.SeedDefaultBadges(ctx, pool); err != nil {
			log.Fatalf("failed to seed badge catalog: %v", err)
		}
		if err := postgres.SeedDefaultQuests(ctx, pool); err != nil {
			log.Fatalf("failed to seed quest catalog: %v", err)
		}
	}

	store := postgres.NewStore(pool)
	tracker := profile.NewTracker(pool)

	var board *leaderboard.Board
	if cfg.RedisAddr != "" {
		board, err = leaderboard.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			// The leaderboard is a projection; awards proceed without it.
			log.Printf("leaderboard disabled: %v", err)
			board = nil
		} else {
			defer board.Close()
		}
	}

	coordinator := award.NewCoordinator(store,
		award.WithMaxAttempts(cfg.AwardMaxAttempts),
		award.WithBackoff(cfg.AwardBackoff),
	)

	// A nil *Board must not reach the handler as a non-nil interface.
	handler := consumer.NewAwardHandler(coordinator, tracker, nil)
	if board != nil {
		handler = consumer.NewAwardHandler(coordinator, tracker, board)
	}

	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()
	registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
	dispatcher := outbox.NewDispatcher(pool, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	go dispatcher.Start(ctx)

	metricsSrv := httptransport.NewOpsServer(httptransport.ServerConfig{
		Address:      cfg.MetricsAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}, pool.Ping)

	go func() {
		log.Printf("metrics listening on %s", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()

	var wg sync.WaitGroup
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	for _, topic := range cfg.ConsumerTopics {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:         cfg.KafkaBrokers,
			GroupID:         cfg.ConsumerGroupID,
			Topic:           topic,
			MinBytes:        1e3,
			MaxBytes:        10e6,
			CommitInterval:  time.Second,
			RetentionTime:   24 * time.Hour,
			ReadLagInterval: -1,
		})

		proc := consumer.NewProcessor(reader, handler)

		wg.Add(1)
		go func(topic string, r *kafka.Reader) {
			defer wg.Done()
			defer r.Close()

			log.Printf("consumer started (topic=%s, group=%s)", topic, cfg.ConsumerGroupID)
			if err := proc.Run(ctx); err != nil && err != context.Canceled {
				log.Printf("consumer stopped with error (topic=%s): %v", topic, err)
			}
		}(topic, reader)
	}

	<-stop
	log.Println("consumer shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}

	dispatcher.Wait()
	wg.Wait()
}
