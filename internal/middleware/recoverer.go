package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/portfolio-chat/backend/pkg/utils"
)

const internalFailure = "Something went wrong!"

// Recoverer turns a handler panic into a logged 500 with a generic JSON body.
func Recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error("panic while serving request",
					zap.Any("panic", rvr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Stack("stack"))

				if r.Header.Get("Connection") != "Upgrade" {
					utils.RespondError(w, http.StatusInternalServerError, internalFailure)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
