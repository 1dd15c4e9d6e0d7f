package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/logger"
)

// Recoverer превращает панику в хендлере в 500 {"message":"internal error"}
// и пишет стек в лог.
func Recoverer(log *logger.HTTPLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// http.ErrAbortHandler — штатный способ оборвать ответ
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("uri", r.RequestURI),
					zap.String("request_id", requestID(r)),
					zap.ByteString("stack", debug.Stack()),
				)
				writeMessage(w, http.StatusInternalServerError, "internal error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
