package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/cestmoi1337/ScorePlayer/internal/shared/logger"
	"github.com/cestmoi1337/ScorePlayer/internal/shared/models"
)

// Recoverer превращает панику в обработчике в 500 {"message": "Internal server error."}.
// Стек пишется только в лог.
func Recoverer(log *logger.HTTPLogger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// клиент ушёл, отвечать некому
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("panic recovered",
					zap.String("request_id", RequestIDFromContext(r.Context())),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(models.MessageResponse{Message: "Internal server error."})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
