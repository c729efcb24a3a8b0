package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const apiKeyBytes = 32 // 256-bit keys

// APIKey is the stored representation of an API key (no raw key).
type APIKey struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Owner      string     `json:"owner"`
	KeyPrefix  string     `json:"key_prefix"` // first 8 chars for identification
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// APIKeyStore manages API keys in SQLite.
type APIKeyStore struct {
	db *sql.DB
}

// NewAPIKeyStore creates an API key store.
func NewAPIKeyStore(db *sql.DB) *APIKeyStore {
	return &APIKeyStore{db: db}
}

// Create generates a new API key. The owner is recorded on actions taken
// with the key, such as acknowledging alerts; it defaults to the name.
// Returns the raw key (shown once to the user) and the stored record.
func (s *APIKeyStore) Create(name, owner string) (string, *APIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("key name is required")
	}
	owner = strings.TrimSpace(owner)
	if owner == "" {
		owner = name
	}

	raw, err := generateAPIKey()
	if err != nil {
		return "", nil, fmt.Errorf("generating key: %w", err)
	}

	prefix := raw[:8]
	now := time.Now().UTC()

	result, err := s.db.Exec(
		"INSERT INTO api_keys (name, owner, key_prefix, key_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		name, owner, prefix, hashAPIKey(raw), now,
	)
	if err != nil {
		return "", nil, fmt.Errorf("storing key: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return "", nil, fmt.Errorf("getting key id: %w", err)
	}

	return raw, &APIKey{ID: id, Name: name, Owner: owner, KeyPrefix: prefix, CreatedAt: now}, nil
}

// List returns all API keys (without the raw key), newest first.
func (s *APIKeyStore) List() (keys []APIKey, err error) {
	rows, err := s.db.Query(
		"SELECT id, name, owner, key_prefix, created_at, last_used_at FROM api_keys ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying keys: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	for rows.Next() {
		var k APIKey
		var lastUsed sql.NullTime
		if err := rows.Scan(&k.ID, &k.Name, &k.Owner, &k.KeyPrefix, &k.CreatedAt, &lastUsed); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		if lastUsed.Valid {
			t := lastUsed.Time
			k.LastUsedAt = &t
		}
		keys = append(keys, k)
	}

	return keys, rows.Err()
}

// Delete removes an API key by ID.
func (s *APIKeyStore) Delete(id int64) error {
	result, err := s.db.Exec("DELETE FROM api_keys WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting key: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("key %d not found", id)
	}

	return nil
}

// Validate checks a raw API key against stored hashes and returns the
// key's owner, or "" if the key is unknown. Valid keys get last_used_at
// updated.
func (s *APIKeyStore) Validate(rawKey string) (string, error) {
	hash := hashAPIKey(rawKey)

	var owner string
	err := s.db.QueryRow("SELECT owner FROM api_keys WHERE key_hash = ?", hash).Scan(&owner)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("validating key: %w", err)
	}

	if _, err := s.db.Exec("UPDATE api_keys SET last_used_at = ? WHERE key_hash = ?", time.Now().UTC(), hash); err != nil {
		return "", fmt.Errorf("recording key use: %w", err)
	}

	return owner, nil
}

func generateAPIKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "fd_" + hex.EncodeToString(b), nil
}

func hashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}
