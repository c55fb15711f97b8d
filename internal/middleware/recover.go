package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/ashureev/campusguide/internal/api"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Recoverer turns panics into a 500 response shaped like a chat reply.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("Panic while handling request",
				"panic", rec,
				"path", r.URL.Path,
				"request_id", chiMiddleware.GetReqID(r.Context()),
				"stack", string(debug.Stack()),
			)
			api.Reply(w, http.StatusInternalServerError, api.ErrorReply(fmt.Errorf("%v", rec)))
		}()
		next.ServeHTTP(w, r)
	})
}
