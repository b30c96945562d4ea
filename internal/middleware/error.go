package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coursesched/pkg/errors"
)

// ErrorHandler wraps an http.HandlerFunc and provides consistent error handling
type ErrorHandler func(w http.ResponseWriter, r *http.Request) error

// contextKey is a custom type for context keys
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "requestID"
)

// WithErrorHandling wraps a handler function with error handling
func WithErrorHandling(log *zap.Logger, handler ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		r = r.WithContext(r.Context())

		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered",
					zap.String("request_id", requestID),
					zap.Any("panic", err),
					zap.ByteString("stack", debug.Stack()))

				appErr := errors.NewInternalError(
					"An unexpected error occurred",
					fmt.Errorf("panic: %v", err),
				)
				errors.WriteError(w, appErr)
			}
		}()

		err := handler(w, r)
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				if appErr.Type == errors.ErrorTypeInternal {
					log.Error("internal server error", zap.String("request_id", requestID), zap.Error(appErr.Err))
				} else {
					log.Warn("request error", zap.String("request_id", requestID), zap.Error(appErr))
				}
			} else {
				log.Error("unexpected error", zap.String("request_id", requestID), zap.Error(err))
			}

			errors.WriteError(w, err)
		}
	}
}

// RequestLogger logs incoming requests
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.New().String()

			log.Info("request received",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r)
		})
	}
}

// Chain combines multiple middleware into a single middleware
func Chain(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
