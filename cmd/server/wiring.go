package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"mjnutrafit/coaching-api/internal/config"
	"mjnutrafit/coaching-api/internal/events"
	"mjnutrafit/coaching-api/internal/repository"
	"mjnutrafit/coaching-api/internal/repository/gormstore"
	"mjnutrafit/coaching-api/internal/repository/mongo"
	"mjnutrafit/coaching-api/internal/storage"
)

const driverMongo = "mongo"

// openStore connects the backend named by cfg.Driver.
func openStore(cfg config.DatabaseConfig, log *logrus.Logger) (*repository.Store, error) {
	if cfg.Driver == driverMongo {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.ConnectDB(ctx, cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("could not connect to MongoDB: %w", err)
		}
		log.WithField("database", cfg.Name).Info("MongoDB connection established")
		return mongo.New(client, client.Database(cfg.Name), log), nil
	}

	db, err := gormstore.Open(gormstore.Options{
		Driver:   cfg.Driver,
		DSN:      cfg.DSN,
		Attempts: cfg.ConnectAttempts,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}
	log.WithField("driver", cfg.Driver).Info("Database connection established")
	return gormstore.New(db), nil
}

// newImageStore uses S3 when a bucket is configured. Without one, pictures
// are kept in process memory, which only suits local development.
func newImageStore(cfg config.S3Config, log *logrus.Logger) (storage.ImageStore, error) {
	if cfg.BucketName == "" {
		base := cfg.PublicBaseURL
		if base == "" {
			base = "http://localhost/uploads"
		}
		log.Warn("s3.bucket_name not set, profile pictures are kept in memory")
		return storage.NewMemory(base), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return storage.NewS3Storage(ctx, cfg, log)
}

// newPublisher falls back to a no-op publisher when AMQP is not configured
// or the broker cannot be reached at startup.
func newPublisher(cfg config.AMQPConfig, log *logrus.Logger) events.Publisher {
	if cfg.URL == "" {
		return events.Noop{}
	}
	pub, err := events.NewAMQPPublisher(cfg.URL, cfg.Exchange, log)
	if err != nil {
		log.WithError(err).Warn("AMQP broker unreachable, domain events disabled")
		return events.Noop{}
	}
	log.WithField("exchange", cfg.Exchange).Info("Publishing domain events over AMQP")
	return pub
}
