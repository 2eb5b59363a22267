// Package storage persists client credentials across sessions. The
// long-lived auth token lives in a small sqlite-backed key/value table so
// it is never held only in volatile state.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// AuthTokenKey is the fixed key under which the long-lived auth token is
// stored.
const AuthTokenKey = "techcv.auth_token"

// Credential is one durable key/value record.
type Credential struct {
	bun.BaseModel `bun:"table:credentials,alias:cred"`

	Key       string    `bun:"key,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Credentials is a durable key/value store.
type Credentials interface {
	Save(ctx context.Context, key, value string) error
	Load(ctx context.Context, key string) (string, error)
}

// SQLiteStore implements Credentials on a bun-managed sqlite database.
type SQLiteStore struct {
	db *bun.DB
}

var _ Credentials = (*SQLiteStore)(nil)

// Open opens (or creates) the sqlite database at path and prepares the
// credentials table.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	store := NewSQLiteStore(bun.NewDB(sqldb, sqlitedialect.New()))
	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wraps an existing bun DB. Callers own Init and Close.
func NewSQLiteStore(db *bun.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Init creates the credentials table when missing.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*Credential)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create credentials table: %w", err)
	}
	return nil
}

// Save upserts the value stored under key.
func (s *SQLiteStore) Save(ctx context.Context, key, value string) error {
	rec := &Credential{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	if _, err := s.db.NewInsert().
		Model(rec).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to save credential %q: %w", key, err)
	}
	return nil
}

// Load returns the value stored under key, or the empty string when the
// key is absent.
func (s *SQLiteStore) Load(ctx context.Context, key string) (string, error) {
	rec := &Credential{}
	err := s.db.NewSelect().
		Model(rec).
		Where("cred.key = ?", key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load credential %q: %w", key, err)
	}
	return rec.Value, nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MemoryStore is an in-memory Credentials implementation for tests and
// ephemeral environments.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Credentials = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

// Save stores value under key.
func (m *MemoryStore) Save(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Load returns the value stored under key, empty when absent.
func (m *MemoryStore) Load(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

// TokenStore binds a Credentials store to the fixed auth token key.
type TokenStore struct {
	creds Credentials
}

// NewTokenStore wraps creds.
func NewTokenStore(creds Credentials) *TokenStore {
	return &TokenStore{creds: creds}
}

// Save persists the auth token under AuthTokenKey.
func (t *TokenStore) Save(ctx context.Context, token string) error {
	return t.creds.Save(ctx, AuthTokenKey, token)
}

// Load returns the persisted auth token, empty when none is stored.
func (t *TokenStore) Load(ctx context.Context) (string, error) {
	return t.creds.Load(ctx, AuthTokenKey)
}
