package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/limaJavier/coursetimetable/internal/config"
	"github.com/limaJavier/coursetimetable/pkg/model"
)

const schema = `CREATE TABLE IF NOT EXISTS timetable_entries (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	course_id TEXT NOT NULL,
	course_code TEXT NOT NULL DEFAULT '',
	course_name TEXT NOT NULL,
	faculty_id TEXT NOT NULL,
	faculty_name TEXT NOT NULL,
	classroom_id TEXT NOT NULL,
	classroom_name TEXT NOT NULL,
	timeslot_id TEXT NOT NULL,
	timeslot_label TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// PostgresStore replaces the timetable inside a single transaction: Clear opens it and deletes the previous rows,
// Commit inserts the new ones and commits. Readers keep seeing the previous timetable until then
type PostgresStore struct {
	db *sqlx.DB

	mu sync.Mutex
	tx *sqlx.Tx
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the timetable table when absent
func (store *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := store.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate timetable entries: %w", err)
	}
	return nil
}

func (store *PostgresStore) Clear(ctx context.Context) (err error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.tx != nil {
		_ = store.tx.Rollback()
		store.tx = nil
	}

	tx, err := store.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace timetable: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM timetable_entries`); err != nil {
		return fmt.Errorf("clear timetable entries: %w", err)
	}

	store.tx = tx
	return nil
}

// Commit inserts the entries and commits. Without a preceding Clear the rows are appended in a transaction of their own
func (store *PostgresStore) Commit(ctx context.Context, entries []model.ScheduleEntry) (err error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	tx := store.tx
	store.tx = nil
	if tx == nil {
		if tx, err = store.db.BeginTxx(ctx, nil); err != nil {
			return fmt.Errorf("begin replace timetable: %w", err)
		}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, row := range NewRows(entries) {
		if _, err = sqlx.NamedExecContext(ctx, tx, `INSERT INTO timetable_entries (id, position, course_id, course_code, course_name, faculty_id, faculty_name, classroom_id, classroom_name, timeslot_id, timeslot_label, created_at) VALUES (:id, :position, :course_id, :course_code, :course_name, :faculty_id, :faculty_name, :classroom_id, :classroom_name, :timeslot_id, :timeslot_label, :created_at)`, &row); err != nil {
			return fmt.Errorf("insert timetable entry: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit timetable: %w", err)
	}
	return nil
}

// Abort rolls back a transaction opened by Clear, leaving the previous timetable in place
func (store *PostgresStore) Abort(ctx context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.tx == nil {
		return nil
	}
	err := store.tx.Rollback()
	store.tx = nil
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback timetable: %w", err)
	}
	return nil
}

func (store *PostgresStore) List(ctx context.Context) ([]Row, error) {
	const query = `SELECT id, position, course_id, course_code, course_name, faculty_id, faculty_name, classroom_id, classroom_name, timeslot_id, timeslot_label, created_at FROM timetable_entries ORDER BY position ASC`
	rows := make([]Row, 0)
	if err := store.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return rows, nil
}
