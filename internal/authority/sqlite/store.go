// Package sqlite implements authority.Store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/artpar/shelf/internal/authority"
	"github.com/artpar/shelf/internal/core"
)

// Store implements authority.Store using SQLite.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

var _ authority.Store = (*Store)(nil)

// New opens or creates the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open authority database: %w", err)
	}
	return newStore(db)
}

// NewInMemory creates an in-memory store (useful for testing).
func NewInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every pooled connection would get its own empty memory database.
	db.SetMaxOpenConns(1)
	return newStore(db)
}

func newStore(db *sql.DB) (*Store, error) {
	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize authority database: %w", err)
	}
	return store, nil
}

// initialize creates the necessary tables and indexes.
func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS cart_items (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id TEXT NOT NULL UNIQUE,
			added_at   INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS interactions (
			id         TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			action     TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_interactions_created_at ON interactions(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AddToCart inserts id unless it is already in the cart.
func (s *Store) AddToCart(ctx context.Context, id core.ProductID) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, 0, authority.ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO cart_items (product_id, added_at) VALUES (?, ?)",
		id.String(), time.Now().UnixNano(),
	)
	if err != nil {
		return false, 0, fmt.Errorf("failed to add cart item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("failed to add cart item: %w", err)
	}

	count, err := s.count(ctx)
	if err != nil {
		return false, 0, err
	}
	return n > 0, count, nil
}

// RemoveFromCart deletes id if present.
func (s *Store) RemoveFromCart(ctx context.Context, id core.ProductID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, authority.ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE product_id = ?", id.String()); err != nil {
		return 0, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return s.count(ctx)
}

// CartItems returns the cart in insertion order.
func (s *Store) CartItems(ctx context.Context) ([]core.ProductID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, authority.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, "SELECT product_id FROM cart_items ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var ids []core.ProductID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		ids = append(ids, core.ProductID(id))
	}
	return ids, rows.Err()
}

// RecordInteraction appends a feedback event.
func (s *Store) RecordInteraction(ctx context.Context, in authority.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return authority.ErrStoreClosed
	}

	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO interactions (id, product_id, action, created_at) VALUES (?, ?, ?, ?)",
		in.ID, in.ProductID.String(), string(in.Action), createdAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record interaction: %w", err)
	}
	return nil
}

// Interactions returns the most recent events first.
func (s *Store) Interactions(ctx context.Context, limit int) ([]authority.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, authority.ErrStoreClosed
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, product_id, action, created_at FROM interactions ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var out []authority.Interaction
	for rows.Next() {
		var (
			in        authority.Interaction
			productID string
			action    string
			createdAt int64
		)
		if err := rows.Scan(&in.ID, &productID, &action, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		in.ProductID = core.ProductID(productID)
		in.Action = core.FeedbackAction(action)
		in.CreatedAt = time.Unix(0, createdAt)
		out = append(out, in)
	}
	return out, rows.Err()
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cart_items").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}
