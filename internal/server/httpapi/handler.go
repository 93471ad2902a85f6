package httpapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/logging"
	"github.com/dmitrijs2005/lifesync/internal/server/models"
	"github.com/dmitrijs2005/lifesync/internal/server/ratelimit"
	"github.com/dmitrijs2005/lifesync/internal/server/services"
)

// KeyAuthenticator resolves API keys presented by ingestion clients.
type KeyAuthenticator interface {
	Authenticate(ctx context.Context, plain string) (*models.APIKey, error)
	TouchLastUsed(ctx context.Context, keyID string) error
}

// ActivityRecorder stores one ingested activity for a user.
type ActivityRecorder interface {
	Record(ctx context.Context, userID string, req *services.ActivityRequest) (*services.IngestResult, error)
}

type createdResponse struct {
	Success bool    `json:"success"`
	ID      string  `json:"id"`
	BookID  *string `json:"bookId"`
}

func retryAfterSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

// handleJapanese serves POST /api/v1/japanese.
func (s *Server) handleJapanese(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Missing or invalid Authorization header")
		return
	}

	key, err := s.keys.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "Invalid API key")
			return
		}
		s.logger.Error(ctx, "api key lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeServerError, "Internal server error")
		return
	}

	ctx = logging.WithUserID(ctx, key.UserID)

	limit, err := s.limiter.Allow(ctx, key.ID)
	if err != nil {
		// the limiter backend is down; requests still go through
		s.logger.Warn(ctx, "rate limiter failed", "key", key.ID, "error", err)
		limit = ratelimit.Result{Allowed: true, Remaining: -1}
	}
	if !limit.Allowed {
		secs := retryAfterSeconds(limit.RetryAfter)
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		w.Header().Set("X-RateLimit-Remaining", "0")
		writeError(w, http.StatusTooManyRequests, codeRateLimited,
			fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", secs))
		return
	}

	var req services.ActivityRequest
	if err := readJSON(r, &req); err != nil {
		if errors.Is(err, errBadJSON) {
			writeError(w, http.StatusBadRequest, codeValidationError, "Invalid JSON body")
			return
		}
		writeError(w, http.StatusBadRequest, codeValidationError, "Validation error: "+err.Error())
		return
	}

	res, err := s.ingest.Record(ctx, key.UserID, &req)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			msg := strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")
			writeError(w, http.StatusBadRequest, codeValidationError, "Validation error: "+msg)
			return
		}
		s.logger.Error(ctx, "failed to record activity", "error", err)
		writeError(w, http.StatusInternalServerError, codeServerError, "Failed to create activity")
		return
	}

	if err := s.keys.TouchLastUsed(ctx, key.ID); err != nil {
		s.logger.Warn(ctx, "failed to update api key last_used_at", "key", key.ID, "error", err)
	}

	if limit.Remaining >= 0 {
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit.Remaining))
	}
	writeJSON(w, http.StatusCreated, createdResponse{Success: true, ID: res.ID, BookID: res.BookID})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
