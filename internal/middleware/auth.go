package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/assignsphere/backend/internal/httpx"
	"github.com/assignsphere/backend/internal/models"
)

type contextKey string

const ctxWriterKey contextKey = "writer"

// TokenValidator verifies a writer session token and returns the embedded
// writer id and role.
type TokenValidator interface {
	ValidateToken(token string) (uuid.UUID, string, error)
}

// WriterAuth authenticates writer-scoped routes with the Bearer JWT issued
// at login. On success the writer id is placed into the request context.
func WriterAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				httpx.Error(w, http.StatusUnauthorized, "missing or malformed Authorization header")
				return
			}

			writerID, role, err := tokens.ValidateToken(raw)
			if err != nil || role != models.RoleWriter {
				httpx.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxWriterKey, writerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WriterFromCtx returns the authenticated writer id, if any.
func WriterFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxWriterKey).(uuid.UUID)
	return id, ok
}

// WithWriter returns a context carrying the given writer id.
func WithWriter(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxWriterKey, id)
}

// AdminAuth guards admin routes. The Bearer key is hashed (SHA-256) and
// compared in constant time against the configured hash; with no hash
// configured the routes are disabled outright.
func AdminAuth(keyHashHex string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHashHex == "" {
				httpx.Error(w, http.StatusForbidden, "admin access not configured")
				return
			}
			raw := extractBearer(r)
			if raw == "" {
				httpx.Error(w, http.StatusUnauthorized, "missing or malformed Authorization header")
				return
			}
			if subtle.ConstantTimeCompare([]byte(hashKey(raw)), []byte(strings.ToLower(keyHashHex))) != 1 {
				httpx.Error(w, http.StatusUnauthorized, "invalid admin key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func hashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
