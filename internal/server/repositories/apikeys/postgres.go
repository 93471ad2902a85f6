// Package apikeys provides PostgreSQL-backed storage for ingestion API keys.
package apikeys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/dbx"
	"github.com/dmitrijs2005/lifesync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, key *models.APIKey) error {
	query :=
		`INSERT INTO api_keys (id, user_id, key_hash, key_prefix, name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		key.ID, key.UserID, key.Hash, key.Prefix, key.Name, key.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// GetByHash returns the key with the given hash or common.ErrorNotFound.
func (r *PostgresRepository) GetByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	query :=
		`SELECT id, user_id, key_hash, key_prefix, name, last_used_at, created_at FROM api_keys
		 WHERE key_hash = $1
		 `

	key := &models.APIKey{}
	var lastUsed sql.NullTime
	err := r.db.QueryRowContext(ctx, query, hash).Scan(
		&key.ID, &key.UserID, &key.Hash, &key.Prefix, &key.Name, &lastUsed, &key.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if lastUsed.Valid {
		key.LastUsedAt = &lastUsed.Time
	}

	return key, nil
}

func (r *PostgresRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, at.UTC()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
