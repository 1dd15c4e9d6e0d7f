package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore — Store в памяти процесса под одним мьютексом.
//
// Подходит для одного экземпляра сервера. Истёкшие окна удаляются Sweep
// (или фоновым Run).
type MemoryStore struct {
	mu      sync.Mutex
	clock   Clock
	windows map[string]*window
}

func NewMemoryStore(clock Clock) *MemoryStore {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MemoryStore{
		clock:   clock,
		windows: make(map[string]*window),
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string, d time.Duration) (int, time.Time, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(d)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}

func (s *MemoryStore) Decrement(_ context.Context, key string, resetAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.windows[key]; ok && w.count > 0 && w.resetAt.Equal(resetAt) {
		w.count--
	}
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, key)
	return nil
}

// Sweep удаляет истёкшие окна и возвращает их количество.
func (s *MemoryStore) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, k)
			n++
		}
	}
	return n
}

// Len — число живых ключей (включая ещё не вычищенные истёкшие).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Run периодически вызывает Sweep до отмены ctx.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}
