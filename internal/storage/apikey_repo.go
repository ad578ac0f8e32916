package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/auth"
)

const apiKeyColumns = `id, key_hash, key_prefix, name, is_active, created_at, last_used_at`

// CreatedKey is returned once, right after creation; Key is never stored.
type CreatedKey struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	KeyPrefix string    `json:"key_prefix"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// APIKeyRepo provides methods for api key operations.
type APIKeyRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewAPIKeyRepo creates a new APIKeyRepo.
func NewAPIKeyRepo(db *sql.DB) *APIKeyRepo {
	return &APIKeyRepo{db: db, now: time.Now}
}

// Create generates a key, stores its hash and returns the plain key.
func (r *APIKeyRepo) Create(ctx context.Context, name string) (CreatedKey, error) {
	if name == "" {
		name = "Extension"
	}

	key, err := auth.GenerateKey()
	if err != nil {
		return CreatedKey{}, err
	}

	now := r.now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, key_prefix, name, is_active, created_at) VALUES (?, ?, ?, 1, ?)`,
		auth.HashKey(key), auth.DisplayPrefix(key), name, formatTime(now),
	)
	if err != nil {
		return CreatedKey{}, fmt.Errorf("failed to insert api key: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return CreatedKey{}, err
	}

	return CreatedKey{
		ID:        id,
		Key:       key,
		KeyPrefix: auth.DisplayPrefix(key),
		Name:      name,
		CreatedAt: now,
	}, nil
}

// List returns every key, newest first.
func (r *APIKeyRepo) List(ctx context.Context) ([]APIKey, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+apiKeyColumns+` FROM api_keys ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer rows.Close()

	keys := make([]APIKey, 0)
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Verify looks up an active key by its plain value and records its use.
// Unknown and revoked keys both yield ErrNotFound.
func (r *APIKeyRepo) Verify(ctx context.Context, key string) (APIKey, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE key_hash = ? AND is_active = 1`,
		auth.HashKey(key),
	)
	k, err := scanAPIKey(row)
	if err != nil {
		return APIKey{}, err
	}

	now := r.now().UTC()
	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = ? WHERE id = ?`, formatTime(now), k.ID); err != nil {
		return APIKey{}, fmt.Errorf("failed to touch api key: %w", err)
	}
	k.LastUsedAt = &now
	return k, nil
}

// Revoke deactivates a key without deleting it.
func (r *APIKeyRepo) Revoke(ctx context.Context, id int64) error {
	return r.execOne(ctx, `UPDATE api_keys SET is_active = 0 WHERE id = ?`, id)
}

// Delete removes a key permanently.
func (r *APIKeyRepo) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM api_keys WHERE id = ?`, id)
}

// Count returns active and total key counts.
func (r *APIKeyRepo) Count(ctx context.Context) (active, total int, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(is_active), 0), COUNT(*) FROM api_keys`,
	).Scan(&active, &total)
	return active, total, err
}

func (r *APIKeyRepo) execOne(ctx context.Context, query string, id int64) error {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("api key update failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAPIKey(s scanner) (APIKey, error) {
	var (
		k         APIKey
		active    int
		createdAt string
		lastUsed  sql.NullString
	)
	err := s.Scan(&k.ID, &k.KeyHash, &k.KeyPrefix, &k.Name, &active, &createdAt, &lastUsed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return APIKey{}, ErrNotFound
		}
		return APIKey{}, fmt.Errorf("failed to scan api key: %w", err)
	}

	k.IsActive = active == 1
	if k.CreatedAt, err = parseTime(createdAt); err != nil {
		return APIKey{}, err
	}
	if lastUsed.Valid {
		t, err := parseTime(lastUsed.String)
		if err != nil {
			return APIKey{}, err
		}
		k.LastUsedAt = &t
	}
	return k, nil
}
