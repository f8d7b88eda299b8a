package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/shared-expenses/internal"
	"github.com/frahmantamala/shared-expenses/internal/transport"
	"github.com/frahmantamala/shared-expenses/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Verifier TokenVerifier
}

// NewHandler wraps a verifier; a nil verifier makes every protected request
// fail with 500.
func NewHandler(v TokenVerifier) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Verifier:    v,
	}
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Verifier == nil {
			h.Logger.Error("auth middleware: no key set configured")
			h.HandleServiceError(w, internal.NewInternalError(ErrNotConfigured.Error(), ErrNotConfigured))
			return
		}

		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, internal.NewUnauthorizedError(ErrMissingToken.Error(), internal.ErrCodeMissingToken))
			return
		}

		claims, err := h.Verifier.Verify(token)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				h.Logger.Error("auth middleware: verifier unavailable", "error", err)
				h.HandleServiceError(w, internal.NewInternalError(ErrNotConfigured.Error(), err))
				return
			}
			h.Logger.Warn("token validation failed", "error", err)
			h.HandleServiceError(w, internal.NewUnauthorizedError(ErrInvalidToken.Error(), internal.ErrCodeInvalidToken).WithCause(err))
			return
		}

		h.Logger.Debug("auth middleware: token validated", "subject", claims.Subject)

		ctx := internal.ContextWithSubject(r.Context(), claims.Subject)
		ctx = logger.With(ctx, "subject", claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
