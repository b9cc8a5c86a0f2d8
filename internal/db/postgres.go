package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrNoDSN = errors.New("database url not set")

// Connect opens the pool, checks it and brings the schema up to date.
func Connect(ctx context.Context, dsn string, log *zap.Logger) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Info("connected to postgres")

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	log.Info("schema initialized")

	return pool, nil
}

func initSchema(ctx context.Context, db *pgxpool.Pool) error {
	// -------------------------------
	// DEFAULT TABLE PER DEVICE
	// -------------------------------
	tablePreferencesSQL := `
		CREATE TABLE IF NOT EXISTS table_preferences (
			device_id VARCHAR(128) PRIMARY KEY,
			table_number VARCHAR(32) NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(ctx, tablePreferencesSQL); err != nil {
		return err
	}

	// -------------------------------
	// CONTACT FORM
	// -------------------------------
	contactMessagesSQL := `
		CREATE TABLE IF NOT EXISTS contact_messages (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(ctx, contactMessagesSQL); err != nil {
		return err
	}

	return nil
}
