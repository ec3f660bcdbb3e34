package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"flight-tracker/models"
)

// PostgresStore persists the merged fare table to PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

type fareRowRecord struct {
	ID               int64     `db:"id"`
	RunID            string    `db:"run_id"`
	CollectionDate   time.Time `db:"collection_date"`
	Airline          string    `db:"airline"`
	Price            float64   `db:"price"`
	DepartureAirport string    `db:"departure_airport"`
	ArrivalAirport   string    `db:"arrival_airport"`
	DepartureTime    string    `db:"departure_time"`
	ArrivalTime      string    `db:"arrival_time"`
	Duration         string    `db:"duration"`
	FlightNumber     string    `db:"flight_number"`
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS fare_rows (
			id                SERIAL PRIMARY KEY,
			run_id            UUID          NOT NULL,
			collection_date   DATE          NOT NULL,
			airline           TEXT          NOT NULL,
			price             NUMERIC(12,2) NOT NULL,
			departure_airport TEXT          NOT NULL DEFAULT '',
			arrival_airport   TEXT          NOT NULL DEFAULT '',
			departure_time    TEXT          NOT NULL DEFAULT '',
			arrival_time      TEXT          NOT NULL DEFAULT '',
			duration          TEXT          NOT NULL DEFAULT '',
			flight_number     TEXT          NOT NULL DEFAULT '',
			created_at        TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_fare_rows_date    ON fare_rows(collection_date);
		CREATE INDEX IF NOT EXISTS idx_fare_rows_airline ON fare_rows(airline);
		CREATE INDEX IF NOT EXISTS idx_fare_rows_price   ON fare_rows(price);
	`)
	return err
}

// Write replaces the table contents with the rows of one merge run.
// The whole replacement happens in one transaction.
func (ps *PostgresStore) Write(ctx context.Context, runID string, rows []models.NormalizedFareRow) error {
	tx, err := ps.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM fare_rows"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := insertBatch(ctx, tx, runID, rows[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func insertBatch(ctx context.Context, tx *sqlx.Tx, runID string, batch []models.NormalizedFareRow) error {
	const cols = 10
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for c := 0; c < cols; c++ {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			runID, r.CollectionDate, r.Airline, r.Price,
			r.DepartureAirport, r.ArrivalAirport, r.DepartureTime, r.ArrivalTime,
			r.Duration, r.FlightNumber)
	}

	query := fmt.Sprintf(`
		INSERT INTO fare_rows (run_id, collection_date, airline, price,
			departure_airport, arrival_airport, departure_time, arrival_time,
			duration, flight_number)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

// FetchAll retrieves all stored rows ordered by collection date.
func (ps *PostgresStore) FetchAll(ctx context.Context) ([]models.NormalizedFareRow, error) {
	var records []fareRowRecord
	err := ps.db.SelectContext(ctx, &records, `
		SELECT id, run_id, collection_date, airline, price::float8 AS price,
			departure_airport, arrival_airport, departure_time, arrival_time,
			duration, flight_number
		FROM fare_rows
		ORDER BY collection_date, id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}

	rows := make([]models.NormalizedFareRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.NormalizedFareRow{
			CollectionDate:   rec.CollectionDate.UTC(),
			Airline:          rec.Airline,
			Price:            rec.Price,
			DepartureAirport: rec.DepartureAirport,
			ArrivalAirport:   rec.ArrivalAirport,
			DepartureTime:    rec.DepartureTime,
			ArrivalTime:      rec.ArrivalTime,
			Duration:         rec.Duration,
			FlightNumber:     rec.FlightNumber,
		})
	}
	return rows, nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
