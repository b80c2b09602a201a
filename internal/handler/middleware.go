package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/msomdec/prof/internal/auth"
)

type contextKey string

const callerContextKey contextKey = "caller"

// Request body cap for profile mutations: profile data plus one image upload.
const maxRequestSize = 12 << 20 // 12MB

// CallerFromContext returns the verified public key of the caller, or ""
// when the request was not authenticated.
func CallerFromContext(ctx context.Context) string {
	caller, _ := ctx.Value(callerContextKey).(string)
	return caller
}

// RequireAuth verifies the sessionless signature carried by the request and
// injects the caller's public key into the context. A nil verifier disables
// authentication (local development only). Auth params travel as multipart
// form fields on mutating routes, query params on reads, or a JSON body on
// deletes.
func RequireAuth(v *auth.Verifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v == nil {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
			if err := r.ParseMultipartForm(4 << 20); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid multipart form")
				return
			}
		}

		pubKey, timestamp, signature := authParams(r)
		if pubKey == "" || timestamp == "" || signature == "" {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if err := v.Verify(pubKey, timestamp, signature); err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}

		ctx := context.WithValue(r.Context(), callerContextKey, pubKey)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireOwner additionally checks that the {uuid} path segment matches the
// signing key, for routes that mutate the caller's own profile.
func RequireOwner(v *auth.Verifier, next http.Handler) http.Handler {
	return RequireAuth(v, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v != nil && CallerFromContext(r.Context()) != r.PathValue("uuid") {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func authParams(r *http.Request) (pubKey, timestamp, signature string) {
	// Delete requests may carry the auth params as a JSON body.
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			UUID      string `json:"uuid"`
			Timestamp string `json:"timestamp"`
			Signature string `json:"signature"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.UUID != "" {
			return body.UUID, body.Timestamp, body.Signature
		}
		q := r.URL.Query()
		return q.Get("uuid"), q.Get("timestamp"), q.Get("signature")
	}
	return r.FormValue("uuid"), r.FormValue("timestamp"), r.FormValue("signature")
}
