package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/logging"
	"github.com/dmitrijs2005/lifesync/internal/server/models"
	"github.com/dmitrijs2005/lifesync/internal/server/ratelimit"
	"github.com/dmitrijs2005/lifesync/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validKey = "sk_abcdefghijklmnopqrstuvwxyz012345"

type fakeKeys struct {
	err      error
	touchErr error
	touched  []string
}

func (f *fakeKeys) Authenticate(ctx context.Context, plain string) (*models.APIKey, error) {
	if f.err != nil {
		return nil, f.err
	}
	if plain != validKey {
		return nil, common.ErrorUnauthorized
	}
	return &models.APIKey{ID: "k1", UserID: "u1"}, nil
}

func (f *fakeKeys) TouchLastUsed(ctx context.Context, keyID string) error {
	f.touched = append(f.touched, keyID)
	return f.touchErr
}

type fakeRecorder struct {
	userID string
	req    *services.ActivityRequest
	err    error
	bookID *string
}

func (f *fakeRecorder) Record(ctx context.Context, userID string, req *services.ActivityRequest) (*services.IngestResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	f.userID = userID
	f.req = req
	return &services.IngestResult{ID: "a1", BookID: f.bookID}, nil
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis down")
}

type fixture struct {
	keys     *fakeKeys
	recorder *fakeRecorder
	handler  http.Handler
}

func newFixture(limiter ratelimit.Limiter) *fixture {
	f := &fixture{keys: &fakeKeys{}, recorder: &fakeRecorder{}}
	s := NewServer("", logging.NewDiscardLogger(), f.keys, limiter, f.recorder)
	f.handler = s.Handler()
	return f
}

func (f *fixture) post(auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/japanese", strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var out errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandleJapanese_Created(t *testing.T) {
	f := newFixture(ratelimit.NewMemoryLimiter(60, time.Minute))
	book := "b1"
	f.recorder.bookID = &book

	rec := f.post("Bearer "+validKey, `{"type":"reading","durationMinutes":30}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "59", rec.Header().Get("X-RateLimit-Remaining"))

	var out createdResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, "a1", out.ID)
	require.NotNil(t, out.BookID)
	assert.Equal(t, "b1", *out.BookID)

	assert.Equal(t, "u1", f.recorder.userID)
	assert.Equal(t, []string{"k1"}, f.keys.touched)
}

func TestHandleJapanese_NullBookID(t *testing.T) {
	f := newFixture(ratelimit.NewMemoryLimiter(60, time.Minute))

	rec := f.post("Bearer "+validKey, `{"type":"flashcards","durationMinutes":10,"newCards":5}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bookId":null`)
}

func TestHandleJapanese_Unauthorized(t *testing.T) {
	tests := []struct {
		name string
		auth string
		msg  string
	}{
		{"missing header", "", "Missing or invalid Authorization header"},
		{"not bearer", "Basic Zm9vOmJhcg==", "Missing or invalid Authorization header"},
		{"unknown key", "Bearer sk_nope", "Invalid API key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(ratelimit.NewMemoryLimiter(60, time.Minute))

			rec := f.post(tt.auth, `{"type":"reading","durationMinutes":30}`)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			out := decodeError(t, rec)
			assert.Equal(t, codeUnauthorized, out.Code)
			assert.Equal(t, tt.msg, out.Error)
		})
	}
}

func TestHandleJapanese_KeyLookupFails(t *testing.T) {
	f := newFixture(ratelimit.NewMemoryLimiter(60, time.Minute))
	f.keys.err = errors.New("db down")

	rec := f.post("Bearer "+validKey, `{"type":"reading","durationMinutes":30}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, codeServerError, decodeError(t, rec).Code)
}

func TestHandleJapanese_RateLimited(t *testing.T) {
	f := newFixture(ratelimit.NewMemoryLimiter(2, time.Minute))
	body := `{"type":"watching","durationMinutes":20}`

	require.Equal(t, http.StatusCreated, f.post("Bearer "+validKey, body).Code)
	rec := f.post("Bearer "+validKey, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = f.post("Bearer "+validKey, body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	out := decodeError(t, rec)
	assert.Equal(t, codeRateLimited, out.Code)
	assert.Equal(t, "Rate limit exceeded. Try again in 60 seconds", out.Error)
}

func TestHandleJapanese_LimiterFailureLetsRequestThrough(t *testing.T) {
	f := newFixture(failingLimiter{})

	rec := f.post("Bearer "+validKey, `{"type":"listening","durationMinutes":15}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Remaining"))
}

func TestHandleJapanese_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"not json", `{"type":`, "Invalid JSON body"},
		{"empty body", ``, "Invalid JSON body"},
		{"wrong field type", `{"type":"reading","durationMinutes":"thirty"}`, "Validation error: durationMinutes: expected "},
		{"bad type", `{"type":"coding","durationMinutes":30}`, "Validation error: type: must be one of flashcards, reading, watching, listening"},
		{"too long", `{"type":"reading","durationMinutes":481}`, "Validation error: durationMinutes: must be an integer between 1 and 480"},
		{"bad date", `{"type":"reading","durationMinutes":30,"date":"01/03/2024"}`, "Validation error: date: must be in YYYY-MM-DD format"},
		{"cards on reading", `{"type":"reading","durationMinutes":30,"newCards":3}`, "Validation error: newCards is only valid for flashcards type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(ratelimit.NewMemoryLimiter(60, time.Minute))

			rec := f.post("Bearer "+validKey, tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			out := decodeError(t, rec)
			assert.Equal(t, codeValidationError, out.Code)
			assert.True(t, strings.HasPrefix(out.Error, tt.msg), out.Error)
			assert.Empty(t, f.keys.touched)
		})
	}
}

func TestHandleJapanese_RecordFails(t *testing.T) {
	f := newFixture(ratelimit.NewMemoryLimiter(60, time.Minute))
	f.recorder.err = fmt.Errorf("error recording activity: %w", errors.New("connection reset"))

	rec := f.post("Bearer "+validKey, `{"type":"reading","durationMinutes":30}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	out := decodeError(t, rec)
	assert.Equal(t, codeServerError, out.Code)
	assert.Equal(t, "Failed to create activity", out.Error)
}

func TestHandleJapanese_TouchFailureIsIgnored(t *testing.T) {
	f := newFixture(ratelimit.NewMemoryLimiter(60, time.Minute))
	f.keys.touchErr = errors.New("db down")

	rec := f.post("Bearer "+validKey, `{"type":"reading","durationMinutes":30}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandleJapanese_WrongMethod(t *testing.T) {
	f := newFixture(ratelimit.NewMemoryLimiter(60, time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/japanese", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, retryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, 60, retryAfterSeconds(time.Minute))
	assert.Equal(t, 31, retryAfterSeconds(30*time.Second+time.Millisecond))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Empty(t, bearerToken("Bearer"))
	assert.Empty(t, bearerToken("Token abc"))
	assert.Empty(t, bearerToken(""))
}
