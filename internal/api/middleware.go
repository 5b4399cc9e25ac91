package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "loandesk/internal/common/errors"
	"loandesk/internal/common/logger"
	"loandesk/internal/common/metrics"
	"loandesk/internal/models"
	"loandesk/internal/permissions"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const (
	actorKey     contextKey = "actor"
	actorSlotKey contextKey = "actorSlot"
)

// actorSlot carries the authenticated actor back up to requestLogger, which
// only sees the request it passed down.
type actorSlot struct {
	actor *models.Actor
}

// TokenVerifier turns a bearer token into the actor it was issued to.
type TokenVerifier interface {
	Verify(token string) (models.Actor, error)
}

// ActorFromContext returns the authenticated actor, if any.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(models.Actor)
	return actor, ok
}

func withActor(ctx context.Context, actor models.Actor) context.Context {
	if slot, ok := ctx.Value(actorSlotKey).(*actorSlot); ok {
		slot.actor = &actor
	}
	return context.WithValue(ctx, actorKey, actor)
}

// requestLogger logs one line per request after it completes.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			slot := &actorSlot{}
			r = r.WithContext(context.WithValue(r.Context(), actorSlotKey, slot))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := map[string]interface{}{
				"requestId":  middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"durationMs": time.Since(start).Milliseconds(),
			}
			if slot.actor != nil {
				fields["staffId"] = slot.actor.StaffID
			}
			if ww.Status() >= http.StatusInternalServerError {
				log.Error("http request", fields)
				return
			}
			log.Info("http request", fields)
		})
	}
}

// instrument records request counts and latency per route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// authenticate requires a valid bearer token and stores the actor in the
// request context.
func authenticate(tokens TokenVerifier, errs *apperrors.ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				errs.WriteError(w, r, apperrors.NewAuthenticationError("missing bearer token"))
				return
			}

			actor, err := tokens.Verify(strings.TrimSpace(token))
			if err != nil {
				errs.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
		})
	}
}

// requirePermission rejects actors whose role does not grant permissionID.
func requirePermission(resolver *permissions.Resolver, errs *apperrors.ErrorHandler, permissionID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				errs.WriteError(w, r, apperrors.NewAuthenticationError("no authenticated actor"))
				return
			}
			if !resolver.HasPermission(actor, permissionID) {
				metrics.PermissionDenialsTotal.WithLabelValues(string(actor.Role), permissionID).Inc()
				errs.WriteError(w, r, apperrors.NewPermissionDeniedError(permissionID))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
