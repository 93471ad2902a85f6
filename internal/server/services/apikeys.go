package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/server/models"
	"github.com/dmitrijs2005/lifesync/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	apiKeyPrefix    = "sk_"
	apiKeyLength    = 32
	apiKeyAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	displayedPrefix = 8
)

// APIKeyService issues and checks the bearer keys of the ingestion endpoint.
type APIKeyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewAPIKeyService(db *sql.DB, m repomanager.RepositoryManager) *APIKeyService {
	return &APIKeyService{db: db, repomanager: m, now: time.Now}
}

// HashAPIKey returns the hex SHA-256 of key, the form keys are stored in.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func generateAPIKey() (string, error) {
	var b strings.Builder
	b.WriteString(apiKeyPrefix)
	alphabetSize := big.NewInt(int64(len(apiKeyAlphabet)))
	for range apiKeyLength {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		b.WriteByte(apiKeyAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// Create stores a new key for userID and returns its plain form, which is
// never persisted.
func (s *APIKeyService) Create(ctx context.Context, userID, name string) (string, *models.APIKey, error) {
	if userID == "" {
		return "", nil, fmt.Errorf("%w: empty user id", common.ErrorValidation)
	}

	plain, err := generateAPIKey()
	if err != nil {
		return "", nil, fmt.Errorf("key generation error: %w", err)
	}

	key := &models.APIKey{
		ID:        uuid.NewString(),
		UserID:    userID,
		Hash:      HashAPIKey(plain),
		Prefix:    plain[:displayedPrefix] + "...",
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repomanager.APIKeys(s.db).Create(ctx, key); err != nil {
		return "", nil, err
	}
	return plain, key, nil
}

// Authenticate resolves a plain key. Unknown or malformed keys yield
// common.ErrorUnauthorized.
func (s *APIKeyService) Authenticate(ctx context.Context, plain string) (*models.APIKey, error) {
	if !strings.HasPrefix(plain, apiKeyPrefix) {
		return nil, common.ErrorUnauthorized
	}

	key, err := s.repomanager.APIKeys(s.db).GetByHash(ctx, HashAPIKey(plain))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return key, nil
}

func (s *APIKeyService) TouchLastUsed(ctx context.Context, keyID string) error {
	return s.repomanager.APIKeys(s.db).TouchLastUsed(ctx, keyID, s.now())
}
