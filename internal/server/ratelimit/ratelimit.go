// Package ratelimit реализует ограничение частоты запросов фиксированным окном.
//
// Для каждого ключа первый запрос открывает окно длиной Policy.Window.
// Запрос номер Max+1 внутри окна отклоняется, после истечения окна счётчик
// обнуляется. Хранилище счётчиков подключается через интерфейс Store,
// время берётся из Clock, поэтому в тестах окно можно "промотать".
package ratelimit

import (
	"context"
	"time"
)

// Policy — правило ограничения для группы маршрутов.
type Policy struct {
	// Name — пространство имён ключей политики (general, auth, expenses).
	Name string
	// Window — длина окна.
	Window time.Duration
	// Max — сколько запросов разрешено в одном окне.
	Max int
	// SkipSuccessful — не учитывать успешные ответы (status < 400).
	SkipSuccessful bool
	// SkipFailed — не учитывать неуспешные ответы (status >= 400).
	SkipFailed bool
	// Message — текст ответа 429.
	Message string
}

// Skip сообщает, нужно ли вернуть назад засчитанный запрос с данным статусом ответа.
func (p Policy) Skip(status int) bool {
	if status < 400 {
		return p.SkipSuccessful
	}
	return p.SkipFailed
}

// Clock — источник текущего времени.
type Clock interface {
	Now() time.Time
}

// SystemClock — реальное время.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Store хранит счётчики окон.
//
// Increment атомарно для ключа увеличивает счётчик и возвращает новое значение
// и момент закрытия окна. Если окна нет или оно истекло, открывается новое.
// Decrement уменьшает счётчик только окна с тем же resetAt, которое вернул
// Increment: если окно успело смениться, новое не трогается.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
	Decrement(ctx context.Context, key string, resetAt time.Time) error
	Reset(ctx context.Context, key string) error
}

// Result — итог проверки одного запроса.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// ResetIn — сколько осталось до закрытия окна.
	ResetIn time.Duration
}

// Limiter применяет Policy поверх Store.
type Limiter struct {
	policy Policy
	store  Store
	clock  Clock
}

// New создаёт Limiter. clock == nil означает реальное время.
func New(policy Policy, store Store, clock Clock) *Limiter {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Limiter{policy: policy, store: store, clock: clock}
}

func (l *Limiter) Policy() Policy {
	return l.policy
}

// Allow засчитывает запрос для ключа и решает, пропускать ли его.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	count, resetAt, err := l.store.Increment(ctx, l.key(key), l.policy.Window)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Allowed:   count <= l.policy.Max,
		Limit:     l.policy.Max,
		Remaining: l.policy.Max - count,
		ResetAt:   resetAt,
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	res.ResetIn = resetAt.Sub(l.clock.Now())
	if res.ResetIn < 0 {
		res.ResetIn = 0
	}
	return res, nil
}

// Undo возвращает назад запрос, засчитанный в окне resetAt (Result.ResetAt).
func (l *Limiter) Undo(ctx context.Context, key string, resetAt time.Time) error {
	return l.store.Decrement(ctx, l.key(key), resetAt)
}

// Reset сбрасывает окно ключа.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, l.key(key))
}

func (l *Limiter) key(key string) string {
	return l.policy.Name + "|" + key
}
