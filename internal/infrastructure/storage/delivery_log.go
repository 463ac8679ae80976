package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"FeedDigest/internal/domain"
	"FeedDigest/internal/ports"
)

// DeliveryLog persists dispatch attempts into Postgres for audit. The
// pipeline never reads it back: items stay per-run, only the outcome of
// each send is recorded.
type DeliveryLog struct {
	db *sql.DB
}

var _ ports.DeliveryLog = (*DeliveryLog)(nil)

// Open connects to Postgres and returns a delivery log bound to it.
func Open(dsn string) (*DeliveryLog, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &DeliveryLog{db: db}, nil
}

// NewDeliveryLog wires an existing sql.DB implementation.
func NewDeliveryLog(db *sql.DB) *DeliveryLog {
	return &DeliveryLog{db: db}
}

// Record inserts one dispatch outcome.
func (l *DeliveryLog) Record(ctx context.Context, rec domain.DeliveryRecord) error {
	if l == nil || l.db == nil {
		return nil
	}

	query, args, err := sq.Insert("delivery_log").
		Columns("category", "destination", "chars", "status", "sent_at").
		Values(rec.Category, rec.Destination, rec.Chars, rec.Status, rec.SentAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert delivery record: %w", err)
	}

	return nil
}
