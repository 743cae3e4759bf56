package bootstrap

import (
	"context"
	"fmt"

	"medibook/config"
	"medibook/internal/domain/repository"
	"medibook/internal/infrastructure/database"
	gormrepo "medibook/internal/repository"
	"medibook/internal/repository/mongodb"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Storage bundles the repositories of the configured backend.
type Storage struct {
	Users        repository.UserRepository
	Availability repository.AvailabilityRepository
	Bookings     repository.BookingRepository
	AuditLogs    repository.AuditLogRepository

	db    *gorm.DB
	mongo *mongo.Client
}

// OpenStorage connects to the backend named by cfg.DB.Driver.
// Postgres schema is owned by the migrate command; sqlite and mongo prepare themselves.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgresConnection(ctx, cfg.DB, cfg.App.Env)
		if err != nil {
			return nil, err
		}
		return gormStorage(db), nil

	case config.DriverSQLite:
		db, err := database.NewSQLiteConnection(cfg.DB.SQLitePath, cfg.App.Env)
		if err != nil {
			return nil, err
		}
		return gormStorage(db), nil

	case config.DriverMongo:
		client, db, err := database.NewMongoConnection(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to ensure mongo indexes: %w", err)
		}
		return &Storage{
			Users:        mongodb.NewUserRepository(db),
			Availability: mongodb.NewAvailabilityRepository(db),
			Bookings:     mongodb.NewBookingRepository(db),
			AuditLogs:    mongodb.NewAuditLogRepository(db),
			mongo:        client,
		}, nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", cfg.DB.Driver)
}

func gormStorage(db *gorm.DB) *Storage {
	return &Storage{
		Users:        gormrepo.NewUserRepository(db),
		Availability: gormrepo.NewAvailabilityRepository(db),
		Bookings:     gormrepo.NewBookingRepository(db),
		AuditLogs:    gormrepo.NewAuditLogRepository(db),
		db:           db,
	}
}

// Close releases the underlying connection.
func (s *Storage) Close() {
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logrus.Warnf("Failed to close database: %v", err)
			}
		}
	}
	if s.mongo != nil {
		if err := s.mongo.Disconnect(context.Background()); err != nil {
			logrus.Warnf("Failed to disconnect MongoDB: %v", err)
		}
	}
}

// Migrate moves the schema of the configured backend. Only postgres supports down.
func Migrate(ctx context.Context, cfg *config.Config, down bool, steps int) error {
	if cfg.DB.Driver == config.DriverPostgres {
		if down {
			return database.MigrateDown(cfg.DB.MigrateURL(), steps)
		}
		return database.MigrateUp(cfg.DB.MigrateURL())
	}
	if down {
		return fmt.Errorf("migrate down is only supported for %s", config.DriverPostgres)
	}

	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	storage.Close()
	logrus.Infof("Schema for %s is up to date", cfg.DB.Driver)
	return nil
}
