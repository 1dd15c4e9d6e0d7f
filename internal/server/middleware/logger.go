// Логирование HTTP-запросов
package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/logger"
)

// ResponseWriter запоминает статус и размер ответа.
type ResponseWriter struct {
	http.ResponseWriter
	Status int
	Size   int
}

// WrapResponseWriter оборачивает w, если он ещё не обёрнут.
func WrapResponseWriter(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w}
}

func (w *ResponseWriter) WriteHeader(status int) {
	if w.Status == 0 {
		w.Status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if w.Status == 0 {
		w.Status = http.StatusOK
	}
	size, err := w.ResponseWriter.Write(b)
	w.Size += size
	return size, err
}

// StatusCode — итоговый статус; 200, если хендлер ничего не записал.
func (w *ResponseWriter) StatusCode() int {
	if w.Status == 0 {
		return http.StatusOK
	}
	return w.Status
}

func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// LoggerMiddleware пишет в log каждый запрос: метод, URI, статус, размер, длительность.
// Если у запроса есть X-Request-ID (chi middleware.RequestID), он тоже попадает в лог.
func LoggerMiddleware(log *logger.HTTPLogger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewHTTPLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wr := WrapResponseWriter(w)
			next.ServeHTTP(wr, r)

			duration := time.Since(start).Seconds() * 1000
			log.LogRequest(r.Method, r.RequestURI, wr.StatusCode(), wr.Size, duration)

			if wr.StatusCode() >= http.StatusInternalServerError {
				log.Warn("request failed",
					zap.String("method", r.Method),
					zap.String("uri", r.RequestURI),
					zap.Int("status", wr.StatusCode()),
					zap.String("request_id", requestID(r)),
				)
			}
		})
	}
}
