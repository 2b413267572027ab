package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/OFFIS-RIT/idisland/internal/db"
	"github.com/OFFIS-RIT/idisland/internal/queue"
	"github.com/OFFIS-RIT/idisland/internal/storage"
	"github.com/OFFIS-RIT/idisland/internal/util"
	"github.com/OFFIS-RIT/idisland/pkg/leaselock"
	"github.com/OFFIS-RIT/idisland/pkg/logger"
	"github.com/OFFIS-RIT/idisland/pkg/logger/console"
	"github.com/OFFIS-RIT/idisland/pkg/metrics"
	pgxstore "github.com/OFFIS-RIT/idisland/pkg/store/pgx"
	s3store "github.com/OFFIS-RIT/idisland/pkg/store/s3"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
		JSON:  util.GetEnvBool("LOG_JSON", false),
	})
	logger.Init(consoleLogger)

	// Init s3 archive
	s3Client, err := storage.NewS3Client(ctx)
	if err != nil {
		logger.Fatal("Could not create s3 client", "err", err)
	}
	archive := s3store.NewGraphS3Storage(storage.NewBucket(s3Client, util.GetEnvString("AWS_BUCKET", "idisland")))

	// Init pgx client
	pgConn, err := storage.NewPostgresPool(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()
	jobs := db.New(pgConn)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if addr := util.GetEnv("METRICS_ADDR"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			logger.Info("Serving metrics", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server stopped", "err", err)
			}
		}()
	}

	locks := leaselock.New(pgConn, leaselock.Config{
		Holder: util.GetEnv("WORKER_ID"),
		TTL:    util.GetEnvDuration("LEASE_TTL", 5*time.Minute),
	})
	worker := queue.NewWorker(queue.NewWorkerParams{
		Jobs:           jobs,
		Locks:          locks,
		Store:          pgxstore.NewGraphDBStorageWithConnection(pgConn),
		Archive:        archive,
		Metrics:        metrics.New(reg),
		Timings:        jobs,
		PersistTries:   int(util.GetEnvNumeric("PERSIST_TRIES", 3)),
		PersistBackoff: util.GetEnvDuration("PERSIST_BACKOFF", time.Second),
	})

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	// Init rabbitmq queues if not exist
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	retryDelay := util.GetEnvDuration("QUEUE_RETRY_DELAY", 30*time.Second)
	if err := queue.SetupQueues(ch, queue.Queues, retryDelay); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

	// Requeue jobs orphaned by crashed workers
	staleAfter := util.GetEnvDuration("STALE_AFTER", 15*time.Minute)
	go func() {
		ticker := time.NewTicker(staleAfter / 3)
		defer ticker.Stop()
		for {
			if err := queue.RecoverStaleGraphs(ctx, ch, jobs, locks, staleAfter); err != nil {
				logger.Error("Failed to recover stale graphs", "err", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	logger.Info("Listening for messages", "worker", locks.Holder())

	// Create a single consumer channel with prefetch=1
	// This ensures only ONE message is delivered at a time across all queues
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	err = consumerCh.Qos(1, 0, true)
	if err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	type queuedMessage struct {
		msg       amqp.Delivery
		queueName string
	}

	messageChan := make(chan queuedMessage)

	for _, queueName := range queue.Queues {
		go func() {
			consumerTag := fmt.Sprintf("%s_consumer", queueName)
			msgs, err := consumerCh.Consume(
				queueName,
				consumerTag,
				false, // autoAck
				false, // exclusive
				false, // noLocal
				false, // noWait
				nil,   // args
			)
			if err != nil {
				logger.Fatal("Failed to start consuming", "queue", queueName, "err", err)
			}

			for {
				select {
				case <-ctx.Done():
					logger.Info("Stopping consumer", "queue", queueName)
					return
				case msg, ok := <-msgs:
					if !ok {
						logger.Info("Message channel closed", "queue", queueName)
						return
					}
					messageChan <- queuedMessage{msg: msg, queueName: queueName}
				}
			}
		}()
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case qm := <-messageChan:
				startTime := time.Now()
				logger.Info("Received message", "queue", qm.queueName, "retries", queue.RetryCount(qm.msg.Headers))

				var processingErr error
				switch qm.queueName {
				case queue.GenerateQueue:
					processingErr = worker.ProcessGenerateMessage(ctx, string(qm.msg.Body))
				case queue.DeleteQueue:
					processingErr = worker.ProcessDeleteMessage(ctx, string(qm.msg.Body))
				}

				// If there was an error send to retry or dead-letter, otherwise ack the message
				if processingErr != nil {
					logger.Error("Error processing message", "queue", qm.queueName, "err", processingErr)
					queue.HandleProcessingError(consumerCh, qm.msg, qm.queueName)
				} else {
					if err := qm.msg.Ack(false); err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", qm.queueName)
				}

				processingDuration := time.Since(startTime)
				hours := int(processingDuration.Hours())
				minutes := int(processingDuration.Minutes()) % 60
				seconds := int(processingDuration.Seconds()) % 60
				logger.Info(
					"Processing time",
					"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
				)
				logger.Info("Waiting for next message")
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}
