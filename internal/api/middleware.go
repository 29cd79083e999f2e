package api

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/devabdallah1411/arabFilmsServer/internal/access"
	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

const requestIDHeader = "X-Request-ID"

// RequireAuth проверяет bearer-токен и кладет Identity в контекст запроса.
func (h *HTTPHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.guard.Authenticate(access.ParseBearer(r.Header.Get("Authorization")))
		if err != nil {
			h.logger.WarnContext(r.Context(), "Authentication failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
			h.respondErr(w, r, err)
			return
		}
		ctx := access.WithIdentity(r.Context(), id)
		h.logger.DebugContext(ctx, "Token validated", slog.String("userID", id.UserID), slog.String("role", id.Role.String()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles пропускает только субъектов с одной из ролей. Ставится после RequireAuth.
func (h *HTTPHandler) RequireRoles(roles ...domain.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := h.identity(r)
			if !ok {
				h.respondErr(w, r, domain.ErrAuthRequired)
				return
			}
			if err := h.guard.AuthorizeRole(id, roles...); err != nil {
				h.respondErr(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireWorkOwnerOrAdmin проверяет владение работой {id} до вызова обработчика.
func (h *HTTPHandler) RequireWorkOwnerOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.identity(r)
		if !ok {
			h.respondErr(w, r, domain.ErrAuthRequired)
			return
		}
		if err := h.guard.AuthorizeWorkOwnerOrAdmin(r.Context(), id, mux.Vars(r)["id"]); err != nil {
			h.respondErr(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// protect оборачивает обработчик проверкой токена и, если заданы, ролей.
func (h *HTTPHandler) protect(next http.HandlerFunc, roles ...domain.Role) http.Handler {
	var handler http.Handler = next
	if len(roles) > 0 {
		handler = h.RequireRoles(roles...)(handler)
	}
	return h.RequireAuth(handler)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger логирует каждый запрос с его идентификатором и длительностью.
func (h *HTTPHandler) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.logger.InfoContext(r.Context(), "HTTP request",
			slog.String("requestID", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// Recover превращает панику обработчика в ответ 500.
func (h *HTTPHandler) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.ErrorContext(r.Context(), "Panic in handler",
					slog.Any("panic", rec),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				h.respondErr(w, r, domain.NewError(domain.KindInternal, "internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
