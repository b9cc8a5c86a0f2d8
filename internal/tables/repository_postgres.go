package tables

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, deviceID string) (string, error) {
	if strings.TrimSpace(deviceID) == "" {
		return "", nil
	}

	var table string
	err := r.db.QueryRow(ctx, `
		SELECT table_number
		FROM table_preferences
		WHERE device_id = $1
	`, deviceID).Scan(&table)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return table, nil
}

func (r *PostgresRepository) Save(ctx context.Context, deviceID, table string) error {
	deviceID = strings.TrimSpace(deviceID)
	table = strings.TrimSpace(table)
	if deviceID == "" || table == "" {
		return nil
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO table_preferences (device_id, table_number, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (device_id)
		DO UPDATE SET table_number = EXCLUDED.table_number, updated_at = NOW()
	`, deviceID, table)

	return err
}
