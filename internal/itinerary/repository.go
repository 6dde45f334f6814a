package itinerary

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no stored itinerary matches an ID.
var ErrNotFound = errors.New("itinerary not found")

// Record is a stored itinerary with its bookkeeping columns.
type Record struct {
	ID        string
	UserID    string
	Fallback  bool
	Itinerary *Itinerary
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository is a database-backed repository for itineraries.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Save stores a new itinerary, assigning its ID.
func (r *Repository) Save(ctx context.Context, userID string, it *Itinerary, fallback bool) (string, error) {
	it.ID = uuid.NewString()

	data, err := json.Marshal(it)
	if err != nil {
		return "", fmt.Errorf("failed to encode itinerary: %w", err)
	}

	now := r.now()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO itineraries (id, user_id, destination, budget, fallback, itinerary_data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, userID, it.Destination, it.Budget, fallback, data, now, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert itinerary: %w", err)
	}
	return it.ID, nil
}

// Get loads the itinerary with the given ID.
func (r *Repository) Get(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, fallback, itinerary_data, created_at, updated_at FROM itineraries WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load itinerary %s: %w", id, err)
	}
	return rec, nil
}

// Update replaces the stored content of an existing itinerary.
func (r *Repository) Update(ctx context.Context, it *Itinerary) error {
	data, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("failed to encode itinerary: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE itineraries SET destination = ?, budget = ?, itinerary_data = ?, updated_at = ? WHERE id = ?`,
		it.Destination, it.Budget, data, r.now(), it.ID)
	if err != nil {
		return fmt.Errorf("failed to update itinerary %s: %w", it.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecent returns the newest itineraries of a user, newest first.
// An empty userID lists across all users.
func (r *Repository) ListRecent(ctx context.Context, userID string, limit int) ([]Record, error) {
	query := `SELECT id, user_id, fallback, itinerary_data, created_at, updated_at FROM itineraries`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read itinerary row: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		rec  Record
		data []byte
	)
	if err := s.Scan(&rec.ID, &rec.UserID, &rec.Fallback, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Itinerary = &Itinerary{}
	if err := json.Unmarshal(data, rec.Itinerary); err != nil {
		return nil, fmt.Errorf("failed to decode itinerary data: %w", err)
	}
	rec.Itinerary.ID = rec.ID
	return &rec, nil
}
