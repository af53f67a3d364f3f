package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tradesphere/tradesphere-backend/api/responses"
	apperrors "github.com/tradesphere/tradesphere-backend/pkg/errors"
	"github.com/tradesphere/tradesphere-backend/pkg/logger"
	"github.com/tradesphere/tradesphere-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	recordTTL         = 24 * time.Hour
	pendingTTL        = 30 * time.Second
	pendingMarker     = "__pending__"
)

// IdempotencyStore is the slice of the redis client the middleware uses.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

type idempotencyRule struct {
	method string
	path   string
	scope  string
}

// Protected request shapes. Matching is exact on method and route path.
var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, path: "/api/v1/orders", scope: "orders.place"},
}

type idempotencyRecord struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	RequestHash string `json:"request_hash"`
}

type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	return w.ResponseWriter.Write(p)
}

// Idempotency replays a stored response when a protected request repeats with
// the same key and body, and rejects key reuse across different bodies.
func Idempotency(store IdempotencyStore, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, matched := matchRule(r)
			if !matched {
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, _ := UserIDFromContext(r.Context())
			redisKey := redis.IdempotencyKey(rule.scope, userID.String()+":"+key)

			body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
			if err != nil {
				responses.WriteError(r.Context(), w, log, apperrors.Wrap(apperrors.CodeValidation, err, "reading request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			sum := sha256.Sum256(body)
			requestHash := hex.EncodeToString(sum[:])

			stored, found, err := store.Get(r.Context(), redisKey)
			if err != nil {
				responses.WriteError(r.Context(), w, log, apperrors.Wrap(apperrors.CodeDependency, err, "reading idempotency record"))
				return
			}

			if found {
				if stored == pendingMarker {
					responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeIdempotency, "a request with this idempotency key is still in flight"))
					return
				}

				var record idempotencyRecord
				if err := json.Unmarshal([]byte(stored), &record); err != nil {
					responses.WriteError(r.Context(), w, log, apperrors.Wrap(apperrors.CodeDependency, err, "decoding idempotency record"))
					return
				}
				if record.RequestHash != requestHash {
					responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeIdempotency, "idempotency key was already used with a different request body"))
					return
				}

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replay", "true")
				w.WriteHeader(record.Status)
				_, _ = w.Write([]byte(record.Body))
				return
			}

			acquired, err := store.SetNX(r.Context(), redisKey, pendingMarker, pendingTTL)
			if err != nil {
				responses.WriteError(r.Context(), w, log, apperrors.Wrap(apperrors.CodeDependency, err, "claiming idempotency key"))
				return
			}
			if !acquired {
				responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeIdempotency, "a request with this idempotency key is still in flight"))
				return
			}

			capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)

			if capture.status >= http.StatusInternalServerError {
				// Do not pin a failed attempt; let the client retry.
				_ = store.Del(r.Context(), redisKey)
				return
			}

			record := idempotencyRecord{
				Status:      capture.status,
				Body:        capture.buf.String(),
				RequestHash: requestHash,
			}
			encoded, err := json.Marshal(record)
			if err != nil {
				log.Error(r.Context(), "encoding idempotency record", err)
				_ = store.Del(r.Context(), redisKey)
				return
			}
			if err := store.Set(r.Context(), redisKey, string(encoded), recordTTL); err != nil {
				log.Error(r.Context(), "storing idempotency record", err)
			}
		})
	}
}

func matchRule(r *http.Request) (idempotencyRule, bool) {
	for _, rule := range idempotencyRules {
		if rule.method == r.Method && rule.path == r.URL.Path {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}
