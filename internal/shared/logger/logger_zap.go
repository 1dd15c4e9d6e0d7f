// Package logger содержит общий логгер для server и agent.
//
// Пакет предоставляет Zap-логгер, настроенный на запись в файл с ротацией
// (lumberjack) и удобный метод для логирования HTTP-запросов.
package logger

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// HTTPLogger представляет обёртку над zap.Logger для логирования HTTP-событий.
//
// Встраивание *zap.Logger позволяет использовать все методы zap напрямую.
type HTTPLogger struct {
	*zap.Logger
}

// Options — параметры файлового логгера.
//
// Нулевые значения заменяются дефолтами (см. withDefaults).
type Options struct {
	File       string // путь к файлу логов
	Level      string // debug|info|warn|error
	Format     string // console|json
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultOptions — настройки, с которыми логгер работал до появления конфига.
func DefaultOptions() Options {
	return Options{
		File:       filepath.Join("runtime", "logs", "http.log"),
		Level:      "info",
		Format:     "console",
		MaxSizeMB:  100, // MB ≈ ~300 000 строк
		MaxBackups: 10,  // сколько старых файлов хранить
		MaxAgeDays: 30,  // дней
		Compress:   true,
	}
}

// NewHTTPLogger создаёт файловый zap-логгер для HTTP-логов с дефолтными настройками.
//
// Логи записываются в файл runtime/logs/http.log.
func NewHTTPLogger() *HTTPLogger {
	return NewHTTPLoggerFromOptions(DefaultOptions())
}

// NewHTTPLoggerFromOptions создаёт файловый zap-логгер по параметрам из конфига.
//
// Для файлов включена ротация (MaxSize/MaxBackups/MaxAge) и сжатие архивов.
// Формат времени: "HH:MM:SS DD.MM.YYYY".
func NewHTTPLoggerFromOptions(opts Options) *HTTPLogger {
	opts = withDefaults(opts)

	_ = os.MkdirAll(filepath.Dir(opts.File), 0755)

	// lumberjack отвечает за ротацию файлов
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = customTimeEncoder

	var encoder zapcore.Encoder
	if strings.EqualFold(opts.Format, "json") {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, writer, parseLevel(opts.Level))

	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	return &HTTPLogger{Logger: logger}
}

// NewNop возвращает логгер, который ничего не пишет. Удобен в тестах.
func NewNop() *HTTPLogger {
	return &HTTPLogger{Logger: zap.NewNop()}
}

// LogRequest записывает структурированный лог об HTTP-запросе.
//
// method и uri — параметры запроса,
// status — HTTP-статус ответа,
// responseSize — размер ответа в байтах,
// duration — длительность обработки запроса в миллисекундах.
func (logger *HTTPLogger) LogRequest(method, uri string, status, responseSize int, duration float64) {
	logger.Info("HTTP request",
		zap.String("method", method),
		zap.String("uri", uri),
		zap.Int("status", status),
		zap.Int("response_size", responseSize),
		zap.Float64("duration_ms", duration),
	)
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.File == "" {
		opts.File = def.File
	}
	if opts.Level == "" {
		opts.Level = def.Level
	}
	if opts.Format == "" {
		opts.Format = def.Format
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = def.MaxSizeMB
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = def.MaxBackups
	}
	if opts.MaxAgeDays <= 0 {
		opts.MaxAgeDays = def.MaxAgeDays
	}
	return opts
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// customTimeEncoder форматирует время для логов в виде "HH:MM:SS DD.MM.YYYY".
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05 02.01.2006"))
}
