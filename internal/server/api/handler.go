// Package api реализует HTTP-слой сервера трекера расходов.
//
// Пакет отвечает за:
//   - разбор и валидацию тел запросов (пакет validation);
//   - вызов сервисного слоя и формирование JSON-ответов;
//   - маппинг доменных ошибок (service/repository) в HTTP-коды и сообщения.
//
// Маршруты и middleware подключаются в пакете net/http.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/service"
	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/logger"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// Каждый метод если будет возвращать ответ то будет это делать в JSON
const (
	JsonContentType string = "application/json"
	ContentType     string = "Content-Type"
)

// MessageValidationFailed — общее сообщение для ответа со списком нарушений.
const MessageValidationFailed = "Validation failed"

// Handler агрегирует зависимости HTTP-слоя и предоставляет методы-хендлеры.
//
// Handler содержит:
//   - Svc: сервисный слой (бизнес-логика);
//   - Log: логгер для записи событий и ошибок;
//   - Verifier: компонент проверки JWT и middleware авторизации.
type Handler struct {
	Svc      *service.Services
	Log      *logger.HTTPLogger
	Verifier *middleware.JWTVerifier
}

// NewHandler создаёт экземпляр Handler с переданными зависимостями.
func NewHandler(svc *service.Services, log *logger.HTTPLogger, verifier *middleware.JWTVerifier) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		Svc:      svc,
		Log:      log,
		Verifier: verifier,
	}
}

// WriteJSON отвечает JSON-телом с заданным статусом.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(ContentType, JsonContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Вспомогательная функция вывода ошибки
func WriteError(w http.ResponseWriter, status int, message string, fields ...sharedModels.FieldError) {
	WriteJSON(w, status, sharedModels.ErrorResponse{
		Message: message,
		Errors:  fields,
	})
}

// decodeJSON читает тело запроса. Числа остаются json.Number,
// чтобы сумма не проходила через float64.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return serr.ErrBadJSON
	}
	return nil
}

// writeDecodeError отвечает на ошибку decodeJSON.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	WriteError(w, http.StatusBadRequest, serr.ErrBadJSON.Error())
}

// writeServiceError маппит доменную ошибку на HTTP-статус.
//
// Детали внутренних ошибок клиенту не отдаются, только в лог.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var verr *serr.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteError(w, http.StatusBadRequest, MessageValidationFailed, fieldErrors(verr)...)
	case errors.Is(err, serr.ErrInvalidInput), errors.Is(err, serr.ErrBadJSON):
		WriteError(w, http.StatusBadRequest, serr.ErrInvalidInput.Error())
	case errors.Is(err, serr.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, serr.ErrInvalidCredentials.Error())
	case errors.Is(err, serr.ErrUnauthorized), errors.Is(err, serr.ErrUserIDEmpty):
		WriteError(w, http.StatusUnauthorized, serr.ErrUnauthorized.Error())
	case errors.Is(err, serr.ErrForbidden):
		WriteError(w, http.StatusForbidden, "not authorized to access this expense")
	case errors.Is(err, serr.ErrNotFound):
		WriteError(w, http.StatusNotFound, "expense not found")
	case errors.Is(err, serr.ErrAlreadyExists):
		WriteError(w, http.StatusConflict, "user with this email already exists")
	case errors.Is(err, serr.ErrTooManyRequests):
		WriteError(w, http.StatusTooManyRequests, serr.ErrTooManyRequests.Error())
	default:
		fields := []zap.Field{
			zap.String("op", op),
			zap.Error(err),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		}
		if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
			fields = append(fields, zap.String("user_id", userID.String()))
		}
		h.Log.Error("request failed", fields...)
		WriteError(w, http.StatusInternalServerError, serr.ErrInternal.Error())
	}
}

func fieldErrors(verr *serr.ValidationError) []sharedModels.FieldError {
	out := make([]sharedModels.FieldError, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		out = append(out, sharedModels.FieldError{Field: f.Field, Message: f.Message})
	}
	return out
}
