package middleware

import (
	"net/http"
	"strings"

	"github.com/kickzhub/storefront-backend/api/responses"
	"github.com/kickzhub/storefront-backend/internal/shopper"
	pkgAuth "github.com/kickzhub/storefront-backend/pkg/auth"
	"github.com/kickzhub/storefront-backend/pkg/config"
	pkgerrors "github.com/kickzhub/storefront-backend/pkg/errors"
	"github.com/kickzhub/storefront-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// shopper identity. Each observation is also fed to the identity
// watcher so subscribers hear about session rebinding without polling.
func Auth(cfg config.JWTConfig, watcher *shopper.Watcher, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			if claims.ID != "" {
				ctx = WithSessionID(ctx, claims.ID)
				if watcher != nil {
					watcher.Observe(ctx, claims.ID, claims.UserID)
				}
			}

			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
				if claims.ID != "" {
					ctx = logg.WithSessionID(ctx, claims.ID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
