package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/hikelog/internal/apperror"
)

// contextKey is unexported so no other package can read or shadow the
// subject stored in the request context.
type contextKey string

const subjectKey contextKey = "subject"

// RequireToken rejects requests without a valid bearer token.
//
// fail writes the 401 response. Passing the handler package's error writer
// keeps the error body identical to every other API error without this
// package importing the handlers.
func RequireToken(tokens *TokenService, logger *slog.Logger, fail func(http.ResponseWriter, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				fail(w, apperror.Unauthorized("missing bearer token"))
				return
			}

			subject, err := tokens.Validate(raw)
			if err != nil {
				logger.Warn("rejected api token",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				fail(w, apperror.Unauthorized("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFromContext returns the token subject of an authenticated request.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey).(string)
	return s, ok && s != ""
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively as RFC 6750 allows.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
