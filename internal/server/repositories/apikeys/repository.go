package apikeys

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, key *models.APIKey) error
	GetByHash(ctx context.Context, hash string) (*models.APIKey, error)
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}
