package web

import (
	"net/http"

	"github.com/JonMunkholm/orcamentos/internal/core"
	"github.com/JonMunkholm/orcamentos/internal/logging"
	mw "github.com/JonMunkholm/orcamentos/internal/web/middleware"
)

// withOwner stores the authenticated owner on the request context for core
// and for every log line written while serving it.
func withOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := mw.SubjectFromContext(r.Context())
		ctx := core.ContextWithOwner(r.Context(), owner)
		ctx = logging.ContextWith(ctx, "owner_id", owner, "ip", mw.ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
